package numbering

import "go.uber.org/fx"

// Module wires the document numbering service.
var Module = fx.Module("numbering.service",
	fx.Provide(New),
)
