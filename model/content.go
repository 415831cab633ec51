package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ContentExpr is a compiled content expression. It constrains the types of
// the children of a container, like "heading (paragraph | list)*".
//
// The atoms of an expression are names: a name matches the nodes whose type
// is or inherits from the type with this name, and the nodes whose type is
// in the group with this name. Atoms can be grouped with parentheses,
// combined with | (choice), and followed by *, +, ? or a {min,max} range.
type ContentExpr struct {
	source string
	root   *exprType
}

// ParseContentExpr compiles a content expression. An empty string gives an
// expression accepting any children.
func ParseContentExpr(str string) (*ContentExpr, error) {
	stream := newTokenStream(str)
	if stream.next() == nil {
		return &ContentExpr{source: str}, nil
	}
	expr, err := parseExpr(stream)
	if err != nil {
		return nil, err
	}
	if stream.next() != nil {
		return nil, stream.err("unexpected trailing text")
	}
	return &ContentExpr{source: str, root: expr}, nil
}

// String returns the source of the expression.
func (ce *ContentExpr) String() string {
	return ce.source
}

// Names returns the names used by the atoms of the expression.
func (ce *ContentExpr) Names() []string {
	var names []string
	var walk func(e *exprType)
	walk = func(e *exprType) {
		if e == nil {
			return
		}
		if e.Type == "name" {
			names = append(names, e.Name)
		}
		walk(e.Expr)
		for _, sub := range e.Exprs {
			walk(sub)
		}
	}
	walk(ce.root)
	return names
}

// Match tells if a sequence of child types is valid for this expression.
func (ce *ContentExpr) Match(types []*NodeType) bool {
	if ce.root == nil {
		return true
	}
	for _, end := range ce.root.match(types, 0) {
		if end == len(types) {
			return true
		}
	}
	return false
}

// match returns the positions in types reachable after matching the
// expression from pos.
func (e *exprType) match(types []*NodeType, pos int) []int {
	switch e.Type {
	case "name":
		if pos < len(types) && types[pos] != nil && types[pos].accepts(e.Name) {
			return []int{pos + 1}
		}
		return nil
	case "seq":
		current := []int{pos}
		for _, sub := range e.Exprs {
			current = matchAll(sub, types, current)
			if len(current) == 0 {
				return nil
			}
		}
		return current
	case "choice":
		var result []int
		for _, sub := range e.Exprs {
			result = union(result, sub.match(types, pos))
		}
		return result
	case "star":
		return repeat(e.Expr, types, []int{pos}, 0, -1)
	case "plus":
		return repeat(e.Expr, types, []int{pos}, 1, -1)
	case "opt":
		return repeat(e.Expr, types, []int{pos}, 0, 1)
	case "range":
		return repeat(e.Expr, types, []int{pos}, e.Min, e.Max)
	}
	return nil
}

func matchAll(e *exprType, types []*NodeType, positions []int) []int {
	var result []int
	for _, pos := range positions {
		result = union(result, e.match(types, pos))
	}
	return result
}

// repeat matches e between min and max times (max < 0 means unbounded).
func repeat(e *exprType, types []*NodeType, positions []int, min, max int) []int {
	var result []int
	seen := map[int]bool{}
	current := positions
	for count := 0; len(current) > 0; count++ {
		if count >= min {
			result = union(result, current)
		}
		if max >= 0 && count >= max {
			break
		}
		var next []int
		for _, pos := range matchAll(e, types, current) {
			// Positions already reached with at least min matches can't
			// lead anywhere new.
			if count+1 > min && seen[pos] {
				continue
			}
			if count+1 >= min {
				seen[pos] = true
			}
			next = append(next, pos)
		}
		if count > len(types)+min {
			break
		}
		current = next
	}
	return result
}

func union(a, b []int) []int {
	for _, x := range b {
		found := false
		for _, y := range a {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			a = append(a, x)
		}
	}
	return a
}

type tokenStream struct {
	str    string
	pos    int
	tokens []string
}

func newTokenStream(str string) *tokenStream {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, c := range str {
		switch {
		case isWordCharacter(c):
			word.WriteRune(c)
		case unicode.IsSpace(c):
			flush()
		default:
			flush()
			tokens = append(tokens, string(c))
		}
	}
	flush()
	return &tokenStream{str: str, tokens: tokens}
}

func (ts *tokenStream) next() *string {
	if ts.pos >= len(ts.tokens) {
		return nil
	}
	return &ts.tokens[ts.pos]
}

func (ts *tokenStream) eat(tok string) bool {
	if s := ts.next(); s == nil || *s != tok {
		return false
	}
	ts.pos++
	return true
}

func (ts *tokenStream) err(format string, args ...interface{}) error {
	str := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: %s (in content expression %q)", ErrInvalidSchema, str, ts.str)
}

type exprType struct {
	Type  string
	Exprs []*exprType
	Expr  *exprType
	Min   int
	Max   int
	Name  string
}

func parseExpr(stream *tokenStream) (*exprType, error) {
	exprs := []*exprType{}
	for {
		seq, err := parseExprSeq(stream)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, seq)
		if !stream.eat("|") {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprType{Type: "choice", Exprs: exprs}, nil
}

func parseExprSeq(stream *tokenStream) (*exprType, error) {
	exprs := []*exprType{}
	for {
		sub, err := parseExprSubscript(stream)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, sub)
		if s := stream.next(); s == nil || *s == ")" || *s == "|" {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprType{Type: "seq", Exprs: exprs}, nil
}

func parseExprSubscript(stream *tokenStream) (*exprType, error) {
	expr, err := parseExprAtom(stream)
	if err != nil {
		return nil, err
	}
	for {
		if stream.eat("+") {
			expr = &exprType{Type: "plus", Expr: expr}
		} else if stream.eat("*") {
			expr = &exprType{Type: "star", Expr: expr}
		} else if stream.eat("?") {
			expr = &exprType{Type: "opt", Expr: expr}
		} else if stream.eat("{") {
			expr, err = parseExprRange(stream, expr)
			if err != nil {
				return nil, err
			}
		} else {
			break
		}
	}
	return expr, nil
}

func parseNum(stream *tokenStream) (int, error) {
	s := stream.next()
	if s == nil {
		return 0, stream.err("expected number, got end of expression")
	}
	result, err := strconv.Atoi(*s)
	if err != nil {
		return 0, stream.err("expected number, got %q", *s)
	}
	stream.pos++
	return result, nil
}

func parseExprRange(stream *tokenStream, expr *exprType) (*exprType, error) {
	min, err := parseNum(stream)
	if err != nil {
		return nil, err
	}
	max := min
	if stream.eat(",") {
		if s := stream.next(); s != nil && *s != "}" {
			max, err = parseNum(stream)
			if err != nil {
				return nil, err
			}
			if max < min {
				return nil, stream.err("invalid range {%d,%d}", min, max)
			}
		} else {
			max = -1
		}
	}
	if !stream.eat("}") {
		return nil, stream.err("unclosed braced range")
	}
	return &exprType{Type: "range", Min: min, Max: max, Expr: expr}, nil
}

func isWordCharacter(c rune) bool {
	switch {
	case '0' <= c && c <= '9':
	case 'a' <= c && c <= 'z':
	case 'A' <= c && c <= 'Z':
	case c == '_' || c == '-':
	default:
		return false
	}
	return true
}

func isWord(str string) bool {
	for _, c := range str {
		if !isWordCharacter(c) {
			return false
		}
	}
	return str != ""
}

func parseExprAtom(stream *tokenStream) (*exprType, error) {
	if stream.eat("(") {
		expr, err := parseExpr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.eat(")") {
			return nil, stream.err("missing closing paren")
		}
		return expr, nil
	}

	s := stream.next()
	if s == nil {
		return nil, stream.err("unexpected end of expression")
	}
	if !isWord(*s) {
		return nil, stream.err("unexpected token %q", *s)
	}
	if _, err := strconv.Atoi(*s); err == nil {
		return nil, stream.err("unexpected number %q", *s)
	}
	stream.pos++
	return &exprType{Type: "name", Name: *s}, nil
}

// accepts tells if the type matches a name of a content expression.
func (t *NodeType) accepts(name string) bool {
	if t.IsInstanceOf(name) {
		return true
	}
	for _, g := range t.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// ValidContent checks the types of the children of a container against the
// content expression of its type. Types without expression accept any
// children.
func (t *NodeType) ValidContent(children []*NodeType) error {
	if t.ContentExpr == nil || t.ContentExpr.Match(children) {
		return nil
	}
	names := make([]string, len(children))
	for i, child := range children {
		names[i] = child.Name
	}
	return fmt.Errorf("%w: %s can't contain [%s] (expected %q)",
		ErrInvalidContent, t.Name, strings.Join(names, " "), t.ContentExpr)
}

// checkContentNames verifies that the names used in the content expressions
// are known types or groups.
func (s *Schema) checkContentNames() error {
	known := map[string]bool{}
	for _, typ := range s.nodes {
		known[typ.Name] = true
		for _, g := range typ.Groups {
			known[g] = true
		}
	}
	for _, name := range s.order {
		typ := s.nodes[name]
		if typ.ContentExpr == nil {
			continue
		}
		for _, used := range typ.ContentExpr.Names() {
			if !known[used] {
				return fmt.Errorf("%w: no node type or group %q (in the content of %s)", ErrInvalidSchema, used, name)
			}
		}
	}
	return nil
}
