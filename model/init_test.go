package model_test

import (
	"github.com/cozy/substance-go/test/builder"
)

var (
	schema = builder.Schema
	doc    = builder.Doc
	p      = builder.P
	h1     = builder.H1
	li     = builder.Li
	em     = builder.Em
	strong = builder.Strong
	a      = builder.A
	img    = builder.Img
	ul     = builder.Ul
)
