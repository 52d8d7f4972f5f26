package errors

import "fmt"

var (
	ErrMapperNotFound = fmt.Errorf("mapper not found")
	ErrNotFound       = fmt.Errorf("not found")
	ErrCommitted      = fmt.Errorf("unit of work already committed")
	ErrNotSupported   = fmt.Errorf("entity not supported by this mapper")
	ErrEmptyQuery     = fmt.Errorf("no search terms have been found")
)
