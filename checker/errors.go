package checker

import "errors"

var (
	// ErrBadPosition: a step referenced a table position that does not exist.
	ErrBadPosition = errors.New("referenced table position does not exist")
	// ErrWrongShape: the referenced entry exists but is not the kind or
	// form the step requires.
	ErrWrongShape = errors.New("referenced entry has the wrong shape")
	// ErrArityMismatch: an instantiation or elimination step supplied the
	// wrong number of witnesses or hypotheses.
	ErrArityMismatch = errors.New("argument count does not match quantifier prefix")
	// ErrDuplicateDefine: a define step's target term disagrees with an
	// existing binding.
	ErrDuplicateDefine = errors.New("definition disagrees with existing binding")
	// ErrNotClosed: a step required a closed term.
	ErrNotClosed = errors.New("term is not closed")
	// ErrBadImportTable: a seeded import sort table repeats a sort, so
	// its indices cannot be reproduced.
	ErrBadImportTable = errors.New("import sort table repeats a sort")
	// ErrCertMismatch: verification strategies disagreed on a certificate.
	ErrCertMismatch = errors.New("verification strategies disagree")
)
