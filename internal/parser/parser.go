package parser

import (
	"fmt"
	"slices"
	"strings"

	"glfuzz/internal/ast"
	"glfuzz/internal/diag"
	"glfuzz/internal/lexer"
	"glfuzz/internal/source"
	"glfuzz/internal/token"
)

type Options struct {
	Kind          ast.ShaderKind
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Parser: состояние парсера на один файл
type Parser struct {
	toks     []token.Token
	pos      int
	prog     *ast.Program
	structs  map[string]bool // имена структур, объявленные до текущей позиции
	opts     Options
	lastSpan source.Span
}

// ParseFile разбирает один шейдер. Программа возвращается даже при ошибках;
// вызывающий проверяет opts.Reporter (обычно BagReporter).
func ParseFile(fs *source.FileSet, id source.FileID, opts Options) *ast.Program {
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: opts.Reporter})
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	p := Parser{
		toks:    toks,
		prog:    ast.NewProgram(opts.Kind),
		structs: make(map[string]bool),
		opts:    opts,
	}
	p.parseItems()
	return p.prog
}

// ParseString parses src as a shader named name and turns error-level
// diagnostics into an error.
func ParseString(name, src string, kind ast.ShaderKind) (*ast.Program, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(src))
	bag := diag.NewBag(32)
	prog := ParseFile(fs, id, Options{Kind: kind, MaxErrors: 32, Reporter: diag.NewDedupReporter(&diag.BagReporter{Bag: bag})})
	if bag.HasErrors() {
		bag.Sort()
		msgs := make([]string, 0, bag.Len())
		for _, d := range bag.Items() {
			msgs = append(msgs, diag.Format(fs, d))
		}
		return nil, fmt.Errorf("parse %s: %s", name, strings.Join(msgs, "; "))
	}
	return prog, nil
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// parseItems: основной цикл верхнего уровня, parseItem до EOF.
func (p *Parser) parseItems() {
	for !p.at(token.EOF) && !p.opts.Enough() {
		if !p.parseItem() {
			p.resyncTop()
		}
	}
}

// resyncTop прокручивает до ';' или '}' на нулевой глубине, либо до EOF.
func (p *Parser) resyncTop() {
	depth := 0
	for !p.at(token.EOF) {
		tok := p.advance()
		switch tok.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth <= 0 {
				if p.at(token.Semicolon) {
					p.advance()
				}
				return
			}
		case token.Semicolon:
			if depth == 0 {
				return
			}
		}
	}
}
