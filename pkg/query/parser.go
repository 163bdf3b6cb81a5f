package query

import (
	"strconv"
	"strings"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/gn"
)

// Parser is a recursive-descent parser for the mapper query language
// (§4.4). It is built over the token stream a Lexer produces.
type Parser struct {
	toks []Token
	pos  int
}

// NewParser returns a Parser over src.
func NewParser(src string) (*Parser, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return &Parser{toks: toks}, nil
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) atKeyword(kw string) bool {
	t := p.cur()
	return t.Kind == TokKeyword && t.Text == kw
}

func (p *Parser) atOp(op string) bool {
	t := p.cur()
	return t.Kind == TokOp && t.Text == op
}

func syntaxErr(msg string) error {
	return &gn.Error{Code: errcode.ParseSyntaxError, Msg: msg}
}

// ParseMapperQuery parses `domain [where Expr]`, the top-level shape of a
// mapper query (§4.4 Query variant).
func ParseMapperQuery(src string) (*Query, error) {
	p, err := NewParser(src)
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != TokIdent {
		return nil, &gn.Error{
			Code: errcode.ParseUnknownDomainError,
			Msg:  "expected a domain name at the start of the query",
		}
	}
	domain := p.advance().Text

	var where Expr
	if p.atKeyword("where") {
		p.advance()
		where, err = p.parseOr()
		if err != nil {
			return nil, err
		}
	}
	if p.cur().Kind != TokEOF {
		return nil, syntaxErr("unexpected trailing input after query")
	}
	return &Query{Domain: domain, Where: where}, nil
}

// parseOr handles the lowest-precedence level: `OR` (also `||`) (§4.4).
func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("or") || p.atOp("||") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Left: left, Op: BinOr, Right: right}
	}
	return left, nil
}

// parseAnd handles `AND` (also `&&`) (§4.4).
func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("and") || p.atOp("&&") {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Left: left, Op: BinAnd, Right: right}
	}
	return left, nil
}

// parseNot handles `NOT` (also `!`) (§4.4).
func (p *Parser) parseNot() (Expr, error) {
	if p.atKeyword("not") || p.atOp("!") {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return NotExpr{Operand: operand}, nil
	}
	return p.parseComparison()
}

// parseComparison handles the comparison operators, then
// BETWEEN…AND…/IN/LIKE/CONTAINS/IS, per §4.4's precedence table.
func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	switch {
	case p.atOp("=") || p.atOp("==") || p.atOp("!=") || p.atOp(">") ||
		p.atOp("<") || p.atOp(">=") || p.atOp("<="):
		op := p.advance().Text
		right, err := p.parseValueOrSubquery()
		if err != nil {
			return nil, err
		}
		return BinaryExpr{Left: left, Op: normalizeOp(op), Right: right}, nil

	case p.atKeyword("like"):
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return BinaryExpr{Left: left, Op: BinLike, Right: right}, nil

	case p.atKeyword("contains"):
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return BinaryExpr{Left: left, Op: BinContains, Right: right}, nil

	case p.atKeyword("is"):
		p.advance()
		negate := false
		if p.atKeyword("not") {
			negate = true
			p.advance()
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr := Expr(BinaryExpr{Left: left, Op: BinIs, Right: right})
		if negate {
			expr = NotExpr{Operand: expr}
		}
		return expr, nil

	case p.atKeyword("between"):
		p.advance()
		low, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if !p.atKeyword("and") {
			return nil, syntaxErr("expected AND in BETWEEN expression")
		}
		p.advance()
		high, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return BetweenExpr{Operand: left, Low: low, High: high}, nil

	case p.atKeyword("in"):
		p.advance()
		return p.parseInRHS(left, false)

	case p.atKeyword("not"):
		// "NOT IN" as an infix form (distinct from the prefix NOT handled
		// in parseNot, which only applies before an operand).
		save := p.pos
		p.advance()
		if p.atKeyword("in") {
			p.advance()
			return p.parseInRHS(left, true)
		}
		p.pos = save
	}

	return left, nil
}

// parseValueOrSubquery parses the RHS of a comparison operator. A
// parenthesised subquery (`= (sum(plant.quantity) correlate)`, §4.5 item
// 5, spec.md S4) takes priority over a plain grouped expression; if the
// contents don't look like a subquery body, it falls back to an ordinary
// expression (which may itself be a parenthesised group, handled by
// parseAtom).
func (p *Parser) parseValueOrSubquery() (Expr, error) {
	if p.cur().Kind == TokLParen {
		save := p.pos
		p.advance()
		sub, ok, err := p.tryParseSubquery()
		if err != nil {
			return nil, err
		}
		if ok {
			if p.cur().Kind != TokRParen {
				return nil, syntaxErr("expected ')' to close subquery")
			}
			p.advance()
			return sub, nil
		}
		p.pos = save
	}
	return p.parseAdditive()
}

func (p *Parser) parseInRHS(left Expr, negate bool) (Expr, error) {
	if p.cur().Kind != TokLParen {
		return nil, syntaxErr("expected '(' after IN")
	}
	p.advance()

	if sub, ok, err := p.tryParseSubquery(); err != nil {
		return nil, err
	} else if ok {
		if p.cur().Kind != TokRParen {
			return nil, syntaxErr("expected ')' to close subquery")
		}
		p.advance()
		return InExpr{Operand: left, Negate: negate, Subquery: sub}, nil
	}

	var values []Expr
	for {
		v, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if p.cur().Kind != TokRParen {
		return nil, syntaxErr("expected ')' to close IN list")
	}
	p.advance()
	return InExpr{Operand: left, Negate: negate, Values: values}, nil
}

// tryParseSubquery parses a `select-expr [WHERE ...] [CORRELATE]`
// subquery body if the next tokens look like one, per §4.4/§4.5 item 5
// (spec.md S4: `(sum(plant.quantity) correlate)`). The select-expr may be
// a bare domain name, a column path, or an aggregate function call over
// one. A parenthesised group is only treated as a subquery — rather than
// an ordinary grouped expression — when it carries a WHERE clause or a
// trailing CORRELATE; callers that find neither restore the position and
// fall back to parsing an ordinary expression.
func (p *Parser) tryParseSubquery() (*Subquery, bool, error) {
	save := p.pos
	selectExpr, err := p.parseOr()
	if err != nil {
		p.pos = save
		return nil, false, nil
	}

	var where Expr
	correlated := false
	if p.atKeyword("where") {
		p.advance()
		where, err = p.parseOr()
		if err != nil {
			return nil, false, err
		}
	}
	if p.atKeyword("correlate") {
		p.advance()
		correlated = true
	}
	if where == nil && !correlated {
		p.pos = save
		return nil, false, nil
	}
	if p.cur().Kind != TokRParen {
		p.pos = save
		return nil, false, nil
	}
	fn, domain, col := subquerySelectParts(selectExpr)
	return &Subquery{SelectFunc: fn, SelectColumn: col, Domain: domain, Where: where, Correlated: correlated}, true, nil
}

// subquerySelectParts extracts the aggregate function (if any), domain,
// and selected column a subquery's select-expr names, unwrapping a
// single aggregate function call to reach the underlying column path.
func subquerySelectParts(e Expr) (fn FunctionName, domain, col string) {
	if fc, ok := e.(FunctionCall); ok {
		fn = fc.Name
		e = fc.Arg
	}
	path, ok := e.(ColumnPath)
	if !ok {
		return fn, "", ""
	}
	col = path.Column
	if len(path.Steps) > 0 {
		domain = path.Steps[0].Relation
	} else {
		domain = col
		col = ""
	}
	return fn, domain, col
}

func normalizeOp(op string) BinaryOp {
	switch op {
	case "==":
		return BinEq
	default:
		return BinaryOp(op)
	}
}

// parseAdditive handles date-arithmetic-style `+`/`-` between atoms,
// lowest above the atom level (§4.4).
func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.atOp("+") || p.atOp("-") {
		op := p.advance().Text
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Left: left, Op: BinaryOp(op), Right: right}
	}
	return left, nil
}

func (p *Parser) parseAtom() (Expr, error) {
	t := p.cur()

	switch t.Kind {
	case TokInt:
		p.advance()
		i, _ := strconv.ParseInt(t.Text, 10, 64)
		return Literal{Kind: LiteralInt, Int: i, Str: t.Text}, nil

	case TokFloat:
		p.advance()
		f, _ := strconv.ParseFloat(t.Text, 64)
		return Literal{Kind: LiteralFloat, Float: f, Str: t.Text}, nil

	case TokDate:
		p.advance()
		return Literal{Kind: LiteralDate, Str: t.Text}, nil

	case TokString:
		p.advance()
		return Literal{Kind: LiteralString, Str: t.Text}, nil

	case TokStar:
		p.advance()
		return Literal{Kind: LiteralWildcard}, nil

	case TokKeyword:
		switch t.Text {
		case "none", "null":
			p.advance()
			return Literal{Kind: LiteralNone}, nil
		case "empty":
			p.advance()
			return Literal{Kind: LiteralEmpty}, nil
		case "true":
			p.advance()
			return Literal{Kind: LiteralBool, Bool: true}, nil
		case "false":
			p.advance()
			return Literal{Kind: LiteralBool, Bool: false}, nil
		case "distinct", "count", "min", "max", "sum", "avg", "length":
			// handled by parseFunctionOrPath below via ident fallthrough
		}
		if fn, ok := isFunctionName(t.Text); ok {
			return p.parseFunctionCall(fn)
		}
		return nil, syntaxErr("unexpected keyword: " + t.Text)

	case TokIdent:
		if fn, ok := isFunctionName(strings.ToLower(t.Text)); ok {
			return p.parseFunctionCall(fn)
		}
		path, err := p.parseColumnPath()
		if err != nil {
			return nil, err
		}
		return path, nil

	case TokLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur().Kind != TokRParen {
			return nil, syntaxErr("expected ')'")
		}
		p.advance()
		return inner, nil
	}

	return nil, syntaxErr("unexpected token in expression: " + t.Text)
}

func isFunctionName(s string) (FunctionName, bool) {
	switch FunctionName(s) {
	case FuncCount, FuncMin, FuncMax, FuncSum, FuncAvg, FuncLength:
		return FunctionName(s), true
	}
	return "", false
}

func (p *Parser) parseFunctionCall(fn FunctionName) (Expr, error) {
	p.advance() // function name
	if p.cur().Kind != TokLParen {
		return nil, syntaxErr("expected '(' after function name")
	}
	p.advance()

	distinct := false
	if p.atKeyword("distinct") {
		distinct = true
		p.advance()
	}
	arg, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != TokRParen {
		return nil, syntaxErr("expected ')' to close function call")
	}
	p.advance()
	return FunctionCall{Name: fn, Distinct: distinct, Arg: arg}, nil
}

// parseColumnPath parses `relation[.relation]*.column`, with optional
// `[pred,...]` filter brackets at each step (§4.4, §4.5 item 3).
func (p *Parser) parseColumnPath() (ColumnPath, error) {
	var steps []PathStep
	var idents []string

	for {
		if p.cur().Kind != TokIdent {
			return ColumnPath{}, syntaxErr("expected identifier in column path")
		}
		name := p.advance().Text
		idents = append(idents, name)

		var filter *PathFilter
		if p.cur().Kind == TokLBracket {
			p.advance()
			f, err := p.parseFilterPredicates()
			if err != nil {
				return ColumnPath{}, err
			}
			filter = f
		}
		if filter != nil || p.cur().Kind == TokDot {
			steps = append(steps, PathStep{Relation: name, Filter: filter})
		}

		if p.cur().Kind == TokDot {
			p.advance()
			continue
		}
		break
	}

	column := idents[len(idents)-1]
	if len(steps) > 0 && steps[len(steps)-1].Relation == column && steps[len(steps)-1].Filter == nil {
		steps = steps[:len(steps)-1]
	}
	return ColumnPath{Steps: steps, Column: column}, nil
}

func (p *Parser) parseFilterPredicates() (*PathFilter, error) {
	var preds []Expr
	for {
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		preds = append(preds, e)
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if p.cur().Kind != TokRBracket {
		return nil, syntaxErr("expected ']' to close filter bracket")
	}
	p.advance()
	return &PathFilter{Predicates: preds}, nil
}

// ParseValueList parses a comma/whitespace-separated value list (§4.4
// ValueList variant). Quoted values may contain spaces.
func ParseValueList(src string) (*ValueList, error) {
	toks, err := Tokenize(strings.ReplaceAll(src, ",", " , "))
	if err != nil {
		return nil, err
	}
	var values []string
	for _, t := range toks {
		switch t.Kind {
		case TokEOF, TokComma:
			continue
		case TokString, TokIdent, TokInt, TokFloat, TokKeyword:
			values = append(values, t.Text)
		}
	}
	return &ValueList{Values: values}, nil
}

// ParseBinomial parses a partial "Genus species 'Cultivar'" query (§4.4
// Binomial variant, testable scenario S6). Fields are matched
// positionally: genus, then species epithet, then a single-quoted
// cultivar prefix.
func ParseBinomial(src string) (*Binomial, error) {
	src = strings.TrimSpace(src)
	var cultivar string
	hasCultivar := false
	if i := strings.IndexByte(src, '\''); i >= 0 {
		cultivar = strings.TrimSpace(src[i+1:])
		hasCultivar = true
		src = strings.TrimSpace(src[:i])
	}

	fields := strings.Fields(src)
	b := &Binomial{HasCultivar: hasCultivar, CultivarPrefix: cultivar}
	if len(fields) > 0 {
		b.GenusPrefix = fields[0]
	}
	if len(fields) > 1 {
		b.SpeciesPrefix = fields[1]
		b.HasSpecies = true
	}
	return b, nil
}

var domainOpSymbols = []string{"==", "!=", ">=", "<=", "=", ">", "<"}

var domainOpBySymbol = map[string]DomainOp{
	"=": OpEq, "==": OpEqEq, "!=": OpNotEq, ">": OpGt, "<": OpLt,
	">=": OpGtEq, "<=": OpLtEq,
}

// ParseDomainQuery parses `<domain> <op> <values>` (§4.4 Domain variant,
// §4.5 item 1), e.g. "sp = Maxillaria", "species contains variegata",
// "acc in (1,2,3)". A sole "*" value means match everything.
func ParseDomainQuery(src string) (*Domain, error) {
	fields := strings.Fields(src)
	if len(fields) < 2 {
		return nil, syntaxErr("expected '<domain> <op> <values>'")
	}
	domain := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(src), fields[0]))
	lower := strings.ToLower(rest)

	var op DomainOp
	var valueSrc string
	switch {
	case strings.HasPrefix(lower, "not in"):
		op, valueSrc = OpNotIn, strings.TrimSpace(rest[len("not in"):])
	case strings.HasPrefix(lower, "in"):
		op, valueSrc = OpIn, strings.TrimSpace(rest[len("in"):])
	case strings.HasPrefix(lower, "like"):
		op, valueSrc = OpLike, strings.TrimSpace(rest[len("like"):])
	case strings.HasPrefix(lower, "contains"):
		op, valueSrc = OpContains, strings.TrimSpace(rest[len("contains"):])
	default:
		matched := false
		for _, sym := range domainOpSymbols {
			if strings.HasPrefix(rest, sym) {
				op, valueSrc, matched = domainOpBySymbol[sym], strings.TrimSpace(rest[len(sym):]), true
				break
			}
		}
		if !matched {
			return nil, syntaxErr("unrecognized domain query operator")
		}
	}

	valueSrc = strings.TrimPrefix(valueSrc, "(")
	valueSrc = strings.TrimSuffix(valueSrc, ")")
	if strings.TrimSpace(valueSrc) == "*" {
		return &Domain{Domain: domain, Op: op, Values: []Literal{{Kind: LiteralWildcard}}}, nil
	}

	vl, err := ParseValueList(valueSrc)
	if err != nil {
		return nil, err
	}
	lits := make([]Literal, 0, len(vl.Values))
	for _, v := range vl.Values {
		lits = append(lits, Literal{Kind: LiteralString, Str: v})
	}
	return &Domain{Domain: domain, Op: op, Values: lits}, nil
}
