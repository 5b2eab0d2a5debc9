package app

import (
	"github.com/specialistvlad/fragmentgrid/internal/registry"
	"github.com/specialistvlad/fragmentgrid/modules/cache"
	"github.com/specialistvlad/fragmentgrid/modules/circuit_breaker"
	"github.com/specialistvlad/fragmentgrid/modules/copy_payload_key"
	"github.com/specialistvlad/fragmentgrid/modules/http_client"
	"github.com/specialistvlad/fragmentgrid/modules/inline_body"
	"github.com/specialistvlad/fragmentgrid/modules/inline_payload"
	"github.com/specialistvlad/fragmentgrid/modules/payload_to_body"
	"github.com/specialistvlad/fragmentgrid/modules/socketio_rpc"
)

// coreModules is the definitive list of all modules that are compiled into
// the fragmentgrid binary.
var coreModules = []registry.Module{
	&inline_body.Module{},
	&inline_payload.Module{},
	&payload_to_body.Module{},
	&copy_payload_key.Module{},
	&circuit_breaker.Module{},
	&cache.Module{},
	&http_client.Module{},
	&socketio_rpc.Module{},
}
