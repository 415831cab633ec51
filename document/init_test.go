package document_test

import (
	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/test/builder"
)

var (
	schema  = builder.Schema
	doc     = builder.Doc
	article = builder.Article
	p       = builder.P
	h1      = builder.H1
	strong  = builder.Strong
	em      = builder.Em
	ul      = builder.Ul
	li      = builder.Li
	img     = builder.Img

	p1   = model.Path{"p1", "content"}
	p2   = model.Path{"p2", "content"}
	body = model.Path{builder.BodyID, "nodes"}
)
