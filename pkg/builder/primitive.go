package builder

const (
	typePrimitive  = "primitive"
	typeShareData  = "share-data"
	typeCustomUtil = "custom-util"
	typeProtocol   = "protocol-option"
)

// String creates a string literal block
func String(s string) *Block {
	return NewBlock(typePrimitive, "string").WithValue(s)
}

// Integer creates an integer literal block
func Integer(i int64) *Block {
	return NewBlock(typePrimitive, "integer").WithValue(i)
}

// Boolean creates a boolean literal block
func Boolean(b bool) *Block {
	return NewBlock(typePrimitive, "boolean").WithValue(b)
}

// Record creates a record literal block
func Record(r map[string]any) *Block {
	return NewBlock(typePrimitive, "record").WithValue(r)
}

// Null creates a null literal block
func Null() *Block {
	return NewBlock(typePrimitive, "null")
}

// List creates a list block from child blocks
func List(items ...*Block) *Block {
	return NewBlock(typePrimitive, "list").WithList("items", items...)
}

// Get reads a scratch variable
func Get(name string) *Block {
	return NewBlock(typeShareData, "get").WithSlot("name", String(name))
}

// Set assigns a scratch variable
func Set(name string, value *Block) *Block {
	return NewBlock(typeShareData, "set").
		WithSlot("name", String(name)).
		WithSlot("value", value)
}

// Invoke calls a custom util with optional arguments
func Invoke(id string, args *Block) *Block {
	res := NewBlock(typeCustomUtil, "invoke").WithSlot("id", String(id))
	if args != nil {
		res = res.WithSlot("args", args)
	}
	return res
}

// Respond short-circuits with a response of the given status and body
func Respond(status int64, body *Block) *Block {
	res := NewBlock(typeProtocol, "respond").
		WithSlot("status", Integer(status))
	if body != nil {
		res = res.WithSlot("body", body)
	}
	return res
}
