package domain

import (
	"context"
	"errors"
)

type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ListCustomerRequest struct {
	PageToken string
	PageSize  int
	Name      string
	Email     string
}

type ListCustomerResponse struct {
	NextPageToken string     `json:"next_page_token"`
	HasMore       bool       `json:"has_more"`
	Customers     []Customer `json:"customers"`
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
	Deactivate(ctx context.Context, id string) (Customer, error)
}

var (
	ErrInvalidOwner = errors.New("invalid_owner")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
	ErrInactive     = errors.New("customer_inactive")
)
