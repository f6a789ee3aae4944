package domain

import "kgls/pkg/apperror"

var (
	errNoDepot        = apperror.New(apperror.CodeMalformedInstance, "instance has no depot node")
	errMultipleDepots = apperror.New(apperror.CodeMalformedInstance, "instance has more than one depot node")
)
