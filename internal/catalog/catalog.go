package catalog

import "github.com/kode4food/blockplan/internal/block"

// Register adds every block family to the Dispatcher
func Register(d *block.Dispatcher) {
	registerPrimitive(d)
	registerCommonUtil(d)
	registerLogicControl(d)
	registerLoopControl(d)
	registerShareData(d)
	registerProtocolOption(d)
	registerStorageStatement(d)
	registerStream(d)
	registerAccessControl(d)
	registerCustomUtil(d)
	registerScript(d, NewLuaEnv())
	registerAle(d, NewAleEnv())
}

// NewDispatcher creates a Dispatcher holding the complete catalog
func NewDispatcher() *block.Dispatcher {
	d := block.NewDispatcher()
	Register(d)
	return d
}
