package app

import (
	"github.com/vk/modelspec/internal/registry"
	"github.com/vk/modelspec/models/linearreg"
	"github.com/vk/modelspec/models/mixtureda"
	"github.com/vk/modelspec/models/nullmodel"
)

// coreModules returns the model packages registered by default.
func coreModules() []registry.Module {
	return []registry.Module{
		&linearreg.Module{},
		&mixtureda.Module{},
		&nullmodel.Module{},
	}
}
