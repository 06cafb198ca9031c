package host

import "fmt"

// LoadError reports a module that could not be read or compiled.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LinkError reports an import that could not be satisfied. Namespace and
// Name identify the first offending import; both are empty when the failure
// is not tied to a single import.
type LinkError struct {
	Module    string
	Namespace string
	Name      string
	Reason    string
	Err       error
}

func (e *LinkError) Error() string {
	if e.Namespace == "" && e.Name == "" {
		return fmt.Sprintf("link %s: %s", e.Module, e.Reason)
	}
	return fmt.Sprintf("link %s: import %s.%s: %s", e.Module, e.Namespace, e.Name, e.Reason)
}

func (e *LinkError) Unwrap() error { return e.Err }

// CallSignatureError reports an export that is missing or does not have
// the signature the caller expects.
type CallSignatureError struct {
	Module   string
	Function string
	Reason   string
}

func (e *CallSignatureError) Error() string {
	return fmt.Sprintf("call %s.%s: %s", e.Module, e.Function, e.Reason)
}

// TrapError reports a fault raised while a module was executing. The
// session remains usable after a trap.
type TrapError struct {
	Module   string
	Function string
	Err      error
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("trap in %s.%s: %v", e.Module, e.Function, e.Err)
}

func (e *TrapError) Unwrap() error { return e.Err }
