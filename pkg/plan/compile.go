package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/botanic/pkg/query"
	"github.com/gnames/gn"
)

// Join is one table join a compiled plan requires. Each relation hop
// gets a fresh Alias, so two predicates that both navigate species.genus
// produce two separate joins.
type Join struct {
	Table string
	Alias string
	On    string // "alias.col = parent_alias.col"
	Kind  RelationKind
}

// Plan is the compiled result: a WHERE (or HAVING, for aggregate
// predicates) fragment with positional $n args, the joins it requires,
// and whether the presence of an aggregate forces GROUP BY on the root
// table's primary key (§4.5 item 4 "Aggregate/scalar functions").
type Plan struct {
	Domain      string
	RootTable   string
	RootAlias   string
	Joins       []Join
	Where       string
	Having      string
	Args        []any
	NeedsGroupBy bool
}

// SQL renders the compiled plan as a standalone "SELECT id" statement an
// executor can run as-is: internal/io/search never builds SQL itself, it
// only runs what this method returns with p.Args as positional
// arguments.
func (p *Plan) SQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT DISTINCT %s.%s FROM %s %s", p.RootAlias, rootPrimaryKey, p.RootTable, p.RootAlias)
	for _, j := range p.Joins {
		fmt.Fprintf(&b, " JOIN %s %s ON %s", j.Table, j.Alias, j.On)
	}
	if p.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(p.Where)
	}
	if p.NeedsGroupBy {
		fmt.Fprintf(&b, " GROUP BY %s.%s", p.RootAlias, rootPrimaryKey)
	}
	if p.Having != "" {
		b.WriteString(" HAVING ")
		b.WriteString(p.Having)
	}
	return b.String()
}

const rootPrimaryKey = "id"

// Compiler compiles a query.Query against a DomainRegistry into a Plan.
// It holds no connection state — it is pure and unit-testable.
type Compiler struct {
	reg *DomainRegistry
	now time.Time // injected "now" for date-literal resolution (§4.5 item 6)
}

// NewCompiler returns a Compiler. now is the reference instant date
// arithmetic resolves against (normally time.Now(), but deterministic
// tests inject a fixed value).
func NewCompiler(reg *DomainRegistry, now time.Time) *Compiler {
	return &Compiler{reg: reg, now: now}
}

type compileCtx struct {
	aliasSeq  int
	joins     map[string]Join // alias -> join, dedup'd
	joinOrder []string
	args      []any
	having    bool // true while compiling inside an aggregate comparison
}

func (c *compileCtx) newAlias(table string) string {
	c.aliasSeq++
	return fmt.Sprintf("%s_%d", table, c.aliasSeq)
}

func (c *compileCtx) addArg(v any) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *compileCtx) addJoin(j Join) {
	if _, ok := c.joins[j.Alias]; ok {
		return
	}
	c.joins[j.Alias] = j
	c.joinOrder = append(c.joinOrder, j.Alias)
}

// scopedJoins runs fn with a fresh, isolated join set (used while
// compiling a subquery body, so path hops inside it render as JOINs on
// the nested SELECT rather than leaking into the outer Plan.Joins). args
// and alias numbering remain shared so positional placeholders and alias
// names stay unique across the whole compiled statement.
func (c *compileCtx) scopedJoins(fn func() error) ([]Join, error) {
	savedJoins, savedOrder := c.joins, c.joinOrder
	c.joins, c.joinOrder = map[string]Join{}, nil
	defer func() { c.joins, c.joinOrder = savedJoins, savedOrder }()

	if err := fn(); err != nil {
		return nil, err
	}
	joins := make([]Join, 0, len(c.joinOrder))
	for _, alias := range c.joinOrder {
		joins = append(joins, c.joins[alias])
	}
	return joins, nil
}

// Compile turns q into a Plan rooted at q.Domain.
func (c *Compiler) Compile(q *query.Query) (*Plan, error) {
	d, err := c.reg.Resolve(q.Domain)
	if err != nil {
		return nil, err
	}
	ctx := &compileCtx{joins: map[string]Join{}}
	rootAlias := d.Table

	var whereSQL, havingSQL string
	if q.Where != nil {
		sql, isAgg, err := c.compileExpr(ctx, d, rootAlias, q.Where)
		if err != nil {
			return nil, err
		}
		if isAgg {
			havingSQL = sql
		} else {
			whereSQL = sql
		}
	}

	joins := make([]Join, 0, len(ctx.joinOrder))
	for _, alias := range ctx.joinOrder {
		joins = append(joins, ctx.joins[alias])
	}

	return &Plan{
		Domain:       q.Domain,
		RootTable:    d.Table,
		RootAlias:    rootAlias,
		Joins:        joins,
		Where:        whereSQL,
		Having:       havingSQL,
		Args:         ctx.args,
		NeedsGroupBy: havingSQL != "",
	}, nil
}

// CompileDomainQuery compiles a domain-prefix query (§4.4 Domain variant,
// §4.5 item 1): "<domain> <op> <values>" scans the named domain, matching
// <op>/<values> against every column in its SearchableColumns, OR'd
// together. A sole "*" value means match everything (no filter).
func (c *Compiler) CompileDomainQuery(dq *query.Domain) (*Plan, error) {
	d, err := c.reg.Resolve(dq.Domain)
	if err != nil {
		return nil, err
	}
	if len(dq.Values) == 1 && dq.Values[0].Kind == query.LiteralWildcard {
		return c.Compile(&query.Query{Domain: dq.Domain})
	}
	if len(d.SearchableColumns) == 0 {
		return nil, &gn.Error{
			Code: errcode.ParseUnknownColumnError,
			Msg:  "domain " + dq.Domain + " has no searchable columns",
		}
	}

	binOp := domainBinaryOp(dq.Op)
	var where query.Expr
	for _, col := range d.SearchableColumns {
		path := query.ColumnPath{Column: col}
		var pred query.Expr
		if dq.Op == query.OpIn || dq.Op == query.OpNotIn {
			vals := make([]query.Expr, len(dq.Values))
			for i, v := range dq.Values {
				vals[i] = v
			}
			pred = query.InExpr{Operand: path, Negate: dq.Op == query.OpNotIn, Values: vals}
		} else {
			pred = orOverValues(path, binOp, dq.Values)
		}
		if where == nil {
			where = pred
		} else {
			where = query.BinaryExpr{Left: where, Op: query.BinOr, Right: pred}
		}
	}
	return c.Compile(&query.Query{Domain: dq.Domain, Where: where})
}

func orOverValues(path query.ColumnPath, op query.BinaryOp, values []query.Literal) query.Expr {
	var e query.Expr
	for _, v := range values {
		pred := query.Expr(query.BinaryExpr{Left: path, Op: op, Right: v})
		if e == nil {
			e = pred
		} else {
			e = query.BinaryExpr{Left: e, Op: query.BinOr, Right: pred}
		}
	}
	return e
}

func domainBinaryOp(op query.DomainOp) query.BinaryOp {
	switch op {
	case query.OpEq, query.OpEqEq:
		return query.BinEq
	case query.OpNotEq:
		return query.BinNotEq
	case query.OpGt:
		return query.BinGt
	case query.OpLt:
		return query.BinLt
	case query.OpGtEq:
		return query.BinGtEq
	case query.OpLtEq:
		return query.BinLtEq
	case query.OpLike:
		return query.BinLike
	case query.OpContains:
		return query.BinContains
	}
	return query.BinEq
}

// compileExpr compiles e in the context of domain d aliased as alias,
// returning the SQL fragment and whether it contains an aggregate
// function (meaning it belongs in HAVING, not WHERE).
func (c *Compiler) compileExpr(ctx *compileCtx, d DomainDescriptor, alias string, e query.Expr) (string, bool, error) {
	switch v := e.(type) {
	case query.BinaryExpr:
		return c.compileBinary(ctx, d, alias, v)
	case query.NotExpr:
		sql, agg, err := c.compileExpr(ctx, d, alias, v.Operand)
		if err != nil {
			return "", false, err
		}
		return "NOT (" + sql + ")", agg, nil
	case query.BetweenExpr:
		return c.compileBetween(ctx, d, alias, v)
	case query.InExpr:
		return c.compileIn(ctx, d, alias, v)
	case query.ColumnPath:
		// The lexer/parser don't disambiguate a bare word used as a column
		// reference from one used as a literal value (§9 "duck-typed row
		// shape"): `genus.epithet = Maxillaria` and `genus = Maxillaria`
		// both parse "Maxillaria" as a ColumnPath. When it doesn't name a
		// real column and has no relation hops, treat it as a string
		// literal instead.
		if len(v.Steps) == 0 {
			if _, err := d.Column(v.Column); err != nil {
				return ctx.addArg(v.Column), false, nil
			}
		}
		sql, _, agg, err := c.resolvePath(ctx, d, alias, v)
		return sql, agg, err
	case query.FunctionCall:
		sql, agg, err := c.compileFunctionCall(ctx, d, alias, v)
		return sql, agg, err
	case query.Literal:
		sql, err := c.compileLiteral(ctx, v)
		return sql, false, err
	}
	return "", false, syntaxErrf("unsupported expression node %T", e)
}

func syntaxErrf(format string, args ...any) error {
	return &gn.Error{Code: errcode.ParseSyntaxError, Msg: fmt.Sprintf(format, args...)}
}

func (c *Compiler) compileBinary(ctx *compileCtx, d DomainDescriptor, alias string, b query.BinaryExpr) (string, bool, error) {
	switch b.Op {
	case query.BinOr, query.BinAnd:
		lsql, lagg, err := c.compileExpr(ctx, d, alias, b.Left)
		if err != nil {
			return "", false, err
		}
		rsql, ragg, err := c.compileExpr(ctx, d, alias, b.Right)
		if err != nil {
			return "", false, err
		}
		joiner := " AND "
		if b.Op == query.BinOr {
			joiner = " OR "
		}
		return "(" + lsql + joiner + rsql + ")", lagg || ragg, nil
	}

	// None / Empty semantics (§4.5 item 7) take priority over a plain
	// comparison since the RHS literal kind changes the whole operator.
	if lit, ok := b.Right.(query.Literal); ok {
		switch lit.Kind {
		case query.LiteralNone:
			return c.compileNoneComparison(ctx, d, alias, b.Left, b.Op)
		case query.LiteralEmpty:
			return c.compileEmptyComparison(ctx, d, alias, b.Left, b.Op)
		}
	}

	if sub, ok := b.Right.(query.Subquery); ok {
		return c.compileSubqueryComparison(ctx, d, alias, b.Left, b.Op, sub)
	}

	lsql, lagg, err := c.compileExpr(ctx, d, alias, b.Left)
	if err != nil {
		return "", false, err
	}

	if b.Op == query.BinLike || b.Op == query.BinContains {
		// Case-insensitive LIKE/CONTAINS (§4.5 item 8). CONTAINS compiles
		// to `ILIKE '%x%'`; LIKE passes the pattern through as written,
		// using the caller's own %/_ wildcards.
		pattern, err := c.likePattern(b.Right, b.Op == query.BinContains)
		if err != nil {
			return "", false, err
		}
		arg := ctx.addArg(pattern)
		return fmt.Sprintf("%s ILIKE %s", lsql, arg), lagg, nil
	}

	rsql, ragg, err := c.compileExpr(ctx, d, alias, b.Right)
	if err != nil {
		return "", false, err
	}
	op, err := sqlBinaryOp(b.Op)
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("%s %s %s", lsql, op, rsql), lagg || ragg, nil
}

// likePattern extracts the literal string pattern on the RHS of a
// LIKE/CONTAINS comparison. CONTAINS wraps it in wildcards; LIKE uses it
// verbatim, preserving the caller's own %/_ and backslash escapes (§4.5
// item 8).
func (c *Compiler) likePattern(rhs query.Expr, contains bool) (string, error) {
	lit, ok := rhs.(query.Literal)
	if !ok || lit.Kind != query.LiteralString {
		return "", syntaxErrf("LIKE/CONTAINS requires a string literal")
	}
	if contains {
		return "%" + lit.Str + "%", nil
	}
	return lit.Str, nil
}

func sqlBinaryOp(op query.BinaryOp) (string, error) {
	switch op {
	case query.BinEq:
		return "=", nil
	case query.BinNotEq:
		return "!=", nil
	case query.BinGt:
		return ">", nil
	case query.BinLt:
		return "<", nil
	case query.BinGtEq:
		return ">=", nil
	case query.BinLtEq:
		return "<=", nil
	case query.BinIs:
		return "IS", nil
	case query.BinPlus:
		return "+", nil
	case query.BinMinus:
		return "-", nil
	}
	return "", syntaxErrf("unsupported operator: %s", op)
}

// compileNoneComparison implements "col is None"/"col = None" -> IS
// NULL, "col not None"/"col != None" -> IS NOT NULL, and for a to-many
// relation named directly (not a column), Empty/None tests absence of
// any child row (§4.5 item 7).
func (c *Compiler) compileNoneComparison(ctx *compileCtx, d DomainDescriptor, alias string, left query.Expr, op query.BinaryOp) (string, bool, error) {
	negated := op == query.BinNotEq
	if path, ok := left.(query.ColumnPath); ok && len(path.Steps) == 0 {
		if rel, ok := d.Relations[path.Column]; ok && rel.Kind == RelationHasMany {
			return c.compileRelationExistence(ctx, rel, alias, !negated), false, nil
		}
	}
	sql, agg, err := c.compileExpr(ctx, d, alias, left)
	if err != nil {
		return "", false, err
	}
	if negated {
		return sql + " IS NOT NULL", agg, nil
	}
	return sql + " IS NULL", agg, nil
}

// compileEmptyComparison implements the to-many Empty/!=Empty tests.
func (c *Compiler) compileEmptyComparison(ctx *compileCtx, d DomainDescriptor, alias string, left query.Expr, op query.BinaryOp) (string, bool, error) {
	path, ok := left.(query.ColumnPath)
	if !ok || len(path.Steps) != 0 {
		return "", false, syntaxErrf("Empty may only be compared against a relation name")
	}
	rel, ok := d.Relations[path.Column]
	if !ok || rel.Kind != RelationHasMany {
		return "", false, syntaxErrf("%s is not a to-many relation", path.Column)
	}
	return c.compileRelationExistence(ctx, rel, alias, op == query.BinEq), false, nil
}

func (c *Compiler) compileRelationExistence(_ *compileCtx, rel Relation, alias string, negate bool) string {
	kw := "EXISTS"
	if negate {
		kw = "NOT EXISTS"
	}
	return fmt.Sprintf(
		"%s (SELECT 1 FROM %s WHERE %s.%s = %s.id)",
		kw, rel.Table, rel.Table, rel.TheirColumn, alias,
	)
}

func (c *Compiler) compileBetween(ctx *compileCtx, d DomainDescriptor, alias string, b query.BetweenExpr) (string, bool, error) {
	operandSQL, agg, err := c.compileExpr(ctx, d, alias, b.Operand)
	if err != nil {
		return "", false, err
	}

	lowLit, lowIsDate := b.Low.(query.Literal)
	highLit, highIsDate := b.High.(query.Literal)
	if lowIsDate && highIsDate && lowLit.Kind == query.LiteralDate && highLit.Kind == query.LiteralDate {
		lowWin, err := ResolveDateLiteral(lowLit.Str, c.now)
		if err != nil {
			return "", false, err
		}
		highWin, err := ResolveDateLiteral(highLit.Str, c.now)
		if err != nil {
			return "", false, err
		}
		lo := ctx.addArg(lowWin.Start)
		hi := ctx.addArg(highWin.End)
		return fmt.Sprintf("%s >= %s AND %s < %s", operandSQL, lo, operandSQL, hi), agg, nil
	}

	lowSQL, lagg, err := c.compileExpr(ctx, d, alias, b.Low)
	if err != nil {
		return "", false, err
	}
	highSQL, hagg, err := c.compileExpr(ctx, d, alias, b.High)
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("%s BETWEEN %s AND %s", operandSQL, lowSQL, highSQL), agg || lagg || hagg, nil
}

func (c *Compiler) compileIn(ctx *compileCtx, d DomainDescriptor, alias string, in query.InExpr) (string, bool, error) {
	operandSQL, agg, err := c.compileExpr(ctx, d, alias, in.Operand)
	if err != nil {
		return "", false, err
	}
	kw := "IN"
	if in.Negate {
		kw = "NOT IN"
	}

	if in.Subquery != nil {
		sub, err := c.compileSubquery(ctx, d, alias, *in.Subquery, false)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s %s (%s)", operandSQL, kw, sub), agg, nil
	}

	parts := make([]string, 0, len(in.Values))
	for _, v := range in.Values {
		sql, _, err := c.compileExpr(ctx, d, alias, v)
		if err != nil {
			return "", false, err
		}
		parts = append(parts, sql)
	}
	return fmt.Sprintf("%s %s (%s)", operandSQL, kw, strings.Join(parts, ", ")), agg, nil
}

// compileSubqueryComparison handles "col = (subquery ...)" forms (§4.5
// item 5, spec.md S4). A correlated subquery references the outer
// alias; an independent one is a self-contained SELECT.
func (c *Compiler) compileSubqueryComparison(ctx *compileCtx, d DomainDescriptor, alias string, left query.Expr, op query.BinaryOp, sub query.Subquery) (string, bool, error) {
	leftSQL, agg, err := c.compileExpr(ctx, d, alias, left)
	if err != nil {
		return "", false, err
	}
	sql, err := c.compileSubquery(ctx, d, alias, sub, sub.Correlated)
	if err != nil {
		return "", false, err
	}
	sqlOp, err := sqlBinaryOp(op)
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("%s %s (%s)", leftSQL, sqlOp, sql), agg, nil
}

// compileSubquery renders sub as a standalone SELECT. When correlated,
// the subquery's domain must reach the outer alias through one of its
// relations (the teacher's one-hop convention for accession/plant:
// quantity_recvd correlates against the accession row via plant.accession_id).
func (c *Compiler) compileSubquery(ctx *compileCtx, outerDomain DomainDescriptor, outerAlias string, sub query.Subquery, correlated bool) (string, error) {
	subDomain, err := c.reg.Resolve(sub.Domain)
	if err != nil {
		return "", err
	}
	subAlias := ctx.newAlias(subDomain.Table)

	selectExpr := subAlias + ".id"
	if sub.SelectColumn != "" {
		if _, err := subDomain.Column(sub.SelectColumn); err != nil {
			return "", err
		}
		selectExpr = subAlias + "." + sub.SelectColumn
	}
	if sub.SelectFunc != "" {
		selectExpr = fmt.Sprintf("%s(%s)", strings.ToUpper(string(sub.SelectFunc)), selectExpr)
	}

	var conds []string
	if correlated {
		corrCond, err := c.correlate(outerDomain, outerAlias, subDomain, subAlias)
		if err != nil {
			return "", err
		}
		conds = append(conds, corrCond)
	}

	var whereSQL string
	innerJoins, err := ctx.scopedJoins(func() error {
		if sub.Where == nil {
			return nil
		}
		sql, _, err := c.compileExpr(ctx, subDomain, subAlias, sub.Where)
		whereSQL = sql
		return err
	})
	if err != nil {
		return "", err
	}
	if whereSQL != "" {
		conds = append(conds, whereSQL)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s %s", selectExpr, subDomain.Table, subAlias)
	for _, j := range innerJoins {
		sql += fmt.Sprintf(" JOIN %s %s ON %s", j.Table, j.Alias, j.On)
	}
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	return sql, nil
}

// correlate finds the belongs-to/has-many relation linking subDomain
// back to outerDomain and returns the join predicate tying subAlias to
// outerAlias.
func (c *Compiler) correlate(outerDomain DomainDescriptor, outerAlias string, subDomain DomainDescriptor, subAlias string) (string, error) {
	if subDomain.Table == outerDomain.Table {
		return fmt.Sprintf("%s.id = %s.id", outerAlias, subAlias), nil
	}
	for _, rel := range subDomain.Relations {
		if rel.Table == outerDomain.Table && rel.Kind == RelationBelongsTo {
			return fmt.Sprintf("%s.%s = %s.id", subAlias, rel.OwnColumn, outerAlias), nil
		}
	}
	for _, rel := range outerDomain.Relations {
		if rel.Table == subDomain.Table && rel.Kind == RelationHasMany {
			return fmt.Sprintf("%s.%s = %s.id", subAlias, rel.TheirColumn, outerAlias), nil
		}
	}
	return "", syntaxErrf("cannot correlate %s to %s: no relation between them", subDomain.Table, outerDomain.Table)
}

func (c *Compiler) compileFunctionCall(ctx *compileCtx, d DomainDescriptor, alias string, fc query.FunctionCall) (string, bool, error) {
	argSQL, _, err := c.compileExpr(ctx, d, alias, fc.Arg)
	if err != nil {
		return "", false, err
	}
	distinct := ""
	if fc.Distinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", strings.ToUpper(string(fc.Name)), distinct, argSQL), true, nil
}

func (c *Compiler) compileLiteral(ctx *compileCtx, lit query.Literal) (string, error) {
	switch lit.Kind {
	case query.LiteralInt:
		return ctx.addArg(lit.Int), nil
	case query.LiteralFloat:
		return ctx.addArg(lit.Float), nil
	case query.LiteralBool:
		return ctx.addArg(lit.Bool), nil
	case query.LiteralString:
		return ctx.addArg(lit.Str), nil
	case query.LiteralWildcard:
		return ctx.addArg("%"), nil
	case query.LiteralDate:
		win, err := ResolveDateLiteral(lit.Str, c.now)
		if err != nil {
			return "", err
		}
		return ctx.addArg(win.Start), nil
	case query.LiteralNone, query.LiteralEmpty:
		return "", syntaxErrf("None/Empty must be compiled by compileNoneComparison/compileEmptyComparison")
	}
	return "", syntaxErrf("unsupported literal kind: %v", lit.Kind)
}

// resolvePath resolves a ColumnPath into a qualified column reference,
// registering any joins its relation hops require and compiling any
// filter-bracket predicates at each step into that join's ON clause
// (§4.5 item 3 "Filter brackets": `genus[epithet = Maxillaria].id`
// restricts the genus join, not the whole query).
func (c *Compiler) resolvePath(ctx *compileCtx, d DomainDescriptor, alias string, p query.ColumnPath) (string, DomainDescriptor, bool, error) {
	curDomain, curAlias := d, alias
	aggInFilter := false

	for _, step := range p.Steps {
		rel, ok := curDomain.Relations[step.Relation]
		if !ok {
			return "", DomainDescriptor{}, false, syntaxErrf("unknown relation: %s", step.Relation)
		}
		nextDomain, err := c.reg.Resolve(rel.Domain)
		if err != nil {
			return "", DomainDescriptor{}, false, err
		}
		nextAlias := ctx.newAlias(rel.Table)

		var on string
		switch rel.Kind {
		case RelationBelongsTo:
			on = fmt.Sprintf("%s.id = %s.%s", nextAlias, curAlias, rel.OwnColumn)
		case RelationHasMany:
			on = fmt.Sprintf("%s.%s = %s.id", nextAlias, rel.TheirColumn, curAlias)
		}
		ctx.addJoin(Join{Table: rel.Table, Alias: nextAlias, On: on, Kind: rel.Kind})

		if step.Filter != nil {
			for _, pred := range step.Filter.Predicates {
				predSQL, agg, err := c.compileExpr(ctx, nextDomain, nextAlias, pred)
				if err != nil {
					return "", DomainDescriptor{}, false, err
				}
				aggInFilter = aggInFilter || agg
				j := ctx.joins[nextAlias]
				if j.On != "" {
					j.On = "(" + j.On + ") AND (" + predSQL + ")"
				}
				ctx.joins[nextAlias] = j
			}
		}
		curDomain, curAlias = nextDomain, nextAlias
	}

	if _, err := curDomain.Column(p.Column); err != nil {
		return "", DomainDescriptor{}, false, err
	}
	return curAlias + "." + p.Column, curDomain, aggInFilter, nil
}
