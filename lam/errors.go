package lam

import "errors"

var (
	ErrIllTyped         = errors.New("term is ill-typed")
	ErrUnresolvedImport = errors.New("unresolved import-form constant")
)
