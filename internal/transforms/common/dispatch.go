package common

// Dispatcher describes one exported functional entry point: its public name,
// the function value itself, and the declared parameter names in order. The
// first parameter is always the input image and is listed explicitly.
type Dispatcher struct {
	Name       string
	Fn         any
	ParamNames []string
}
