package selection

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Yognotiano/TESIS/internal/domain/model"
)

// DefaultExpr plots S1 against the fractional hour of day.
const DefaultExpr = "S1:(hour + minute/60.0 + second/3600.0)"

// Expr is a numeric expression over the columns of one row.
type Expr interface {
	Eval(row *model.TempRow) float64
	String() string
}

type column struct {
	name string
	get  func(*model.TempRow) float64
}

func (c column) Eval(row *model.TempRow) float64 { return c.get(row) }
func (c column) String() string                  { return c.name }

type number float64

func (n number) Eval(*model.TempRow) float64 { return float64(n) }
func (n number) String() string              { return strconv.FormatFloat(float64(n), 'g', -1, 64) }

type binary struct {
	op   byte
	l, r Expr
}

func (b binary) Eval(row *model.TempRow) float64 {
	l, r := b.l.Eval(row), b.r.Eval(row)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	default:
		return l / r
	}
}

func (b binary) String() string {
	return "(" + b.l.String() + " " + string(b.op) + " " + b.r.String() + ")"
}

type negate struct{ x Expr }

func (n negate) Eval(row *model.TempRow) float64 { return -n.x.Eval(row) }
func (n negate) String() string                  { return "-" + n.x.String() }

var columns = map[string]func(*model.TempRow) float64{
	"year":    func(r *model.TempRow) float64 { return float64(r.Year) },
	"month":   func(r *model.TempRow) float64 { return float64(r.Month) },
	"day":     func(r *model.TempRow) float64 { return float64(r.Day) },
	"hour":    func(r *model.TempRow) float64 { return float64(r.Hour) },
	"minute":  func(r *model.TempRow) float64 { return float64(r.Minute) },
	"second":  func(r *model.TempRow) float64 { return float64(r.Second) },
	"tsec":    func(r *model.TempRow) float64 { return float64(r.Tsec) },
	"file_id": func(r *model.TempRow) float64 { return float64(r.FileID) },
	"ymd":     func(r *model.TempRow) float64 { return float64(r.YMD()) },
	"hourf":   func(r *model.TempRow) float64 { return r.HourF() },
}

func init() {
	for i := 1; i <= model.NumSensors; i++ {
		i := i
		columns[model.SensorName(i)] = func(r *model.TempRow) float64 { return float64(r.Sensor(i)) }
	}
}

// ParseExpr parses +, -, *, / and parentheses over numbers and column names.
func ParseExpr(s string) (Expr, error) {
	p := &exprParser{src: s}
	e, err := p.sum()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d in %q", p.src[p.pos:], p.pos, s)
	}
	return e, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) sum() (Expr, error) {
	l, err := p.product()
	if err != nil {
		return nil, err
	}
	for op := p.peek(); op == '+' || op == '-'; op = p.peek() {
		p.pos++
		r, err := p.product()
		if err != nil {
			return nil, err
		}
		l = binary{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *exprParser) product() (Expr, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for op := p.peek(); op == '*' || op == '/'; op = p.peek() {
		p.pos++
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = binary{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *exprParser) unary() (Expr, error) {
	switch p.peek() {
	case '-':
		p.pos++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negate{x: x}, nil
	case '+':
		p.pos++
		return p.unary()
	}
	return p.primary()
}

func (p *exprParser) primary() (Expr, error) {
	c := p.peek()
	switch {
	case c == 0:
		return nil, fmt.Errorf("unexpected end of expression %q", p.src)
	case c == '(':
		p.pos++
		e, err := p.sum()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, fmt.Errorf("missing ')' in %q", p.src)
		}
		p.pos++
		return e, nil
	case c == '.' || (c >= '0' && c <= '9'):
		start := p.pos
		for p.pos < len(p.src) && (p.src[p.pos] == '.' || (p.src[p.pos] >= '0' && p.src[p.pos] <= '9')) {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q in %q", p.src[start:p.pos], p.src)
		}
		return number(v), nil
	case c == '_' || unicode.IsLetter(rune(c)):
		start := p.pos
		for p.pos < len(p.src) && (p.src[p.pos] == '_' || unicode.IsLetter(rune(p.src[p.pos])) || unicode.IsDigit(rune(p.src[p.pos]))) {
			p.pos++
		}
		name := p.src[start:p.pos]
		get, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("unknown column %q in %q", name, p.src)
		}
		return column{name: name, get: get}, nil
	}
	return nil, fmt.Errorf("unexpected %q at offset %d in %q", c, p.pos, p.src)
}

// Projection maps a row to an (x, y) point. With a single expression, x is the index
// of the row within the selection.
type Projection struct {
	Y Expr
	X Expr
}

// ParseProjection parses "Y:X" or "Y". An empty string means DefaultExpr.
func ParseProjection(s string) (Projection, error) {
	if strings.TrimSpace(s) == "" {
		s = DefaultExpr
	}
	yPart, xPart, hasX := splitTopLevel(s)
	y, err := ParseExpr(yPart)
	if err != nil {
		return Projection{}, err
	}
	p := Projection{Y: y}
	if hasX {
		if p.X, err = ParseExpr(xPart); err != nil {
			return Projection{}, err
		}
	}
	return p, nil
}

func splitTopLevel(s string) (string, string, bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ':':
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

// Point evaluates the projection for the i-th selected row.
func (p Projection) Point(i int, row *model.TempRow) (x, y float64) {
	y = p.Y.Eval(row)
	if p.X == nil {
		return float64(i), y
	}
	return p.X.Eval(row), y
}

// Labels returns the x and y axis titles.
func (p Projection) Labels() (x, y string) {
	if p.X == nil {
		return "entry", p.Y.String()
	}
	return p.X.String(), p.Y.String()
}
