// Package treebuilder turns a flat command string into a *tree.Node, the
// batteries-included path `gosh -c "..."` and the test suites use instead
// of a full line-editing parser. It mirrors the word-splitting
// `internals/plan/plan.go` does for a service's Command field, then runs
// a small recursive-descent parser over the five control operators and
// five redirection operators on top of that.
//
// Operators must be separated from neighboring words by whitespace
// (`a && b`, not `a&&b`); treebuilder is a convenience for tests and `-c`
// invocations, not a POSIX-complete tokenizer, and this keeps it a thin
// wrapper around shlex rather than reimplementing shell quoting rules.
package treebuilder

import (
	"fmt"

	"github.com/canonical/x-go/strutil/shlex"

	"github.com/pboisselier/gosh/internal/tree"
)

// Build parses cmd into a command tree. An empty or whitespace-only cmd
// yields a single EMPTY node.
func Build(cmd string) (*tree.Node, error) {
	words, err := shlex.Split(cmd)
	if err != nil {
		return nil, fmt.Errorf("treebuilder: %w", err)
	}
	if len(words) == 0 {
		return &tree.Node{Kind: tree.EMPTY}, nil
	}
	p := &parser{tokens: words}
	n, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, fmt.Errorf("treebuilder: unexpected token %q", p.peek())
	}
	return n, nil
}

var redirOps = map[string]tree.Kind{
	"<":  tree.REDIR_IN,
	">":  tree.REDIR_OUT,
	">>": tree.REDIR_APPEND,
	"2>": tree.REDIR_ERR,
	"&>": tree.REDIR_ERR_OUT,
}

var controlOps = map[string]bool{
	";": true, "&": true, "&&": true, "||": true, "|": true,
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() string {
	if p.atEnd() {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *parser) next() string {
	t := p.peek()
	p.pos++
	return t
}

// parseList handles `;` and `&` at the lowest precedence: left-associative
// sequencing, where `&` additionally wraps its left operand in BACKGROUND.
func (p *parser) parseList() (*tree.Node, error) {
	left, err := p.parseAndOr()
	if err != nil {
		return nil, err
	}
	for p.peek() == ";" || p.peek() == "&" {
		op := p.next()
		if op == "&" {
			left = &tree.Node{Kind: tree.BACKGROUND, Left: left}
		}
		if p.atEnd() || controlOps[p.peek()] {
			break
		}
		right, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		left = &tree.Node{Kind: tree.SEQ, Left: left, Right: right}
	}
	return left, nil
}

// parseAndOr handles `&&` and `||`, binding tighter than `;`/`&` but looser
// than `|`.
func (p *parser) parseAndOr() (*tree.Node, error) {
	left, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	for p.peek() == "&&" || p.peek() == "||" {
		op := p.next()
		right, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		kind := tree.SEQ_AND
		if op == "||" {
			kind = tree.SEQ_OR
		}
		left = &tree.Node{Kind: kind, Left: left, Right: right}
	}
	return left, nil
}

// parsePipeline handles `|`, binding tighter than `&&`/`||`.
func (p *parser) parsePipeline() (*tree.Node, error) {
	left, err := p.parseSimple()
	if err != nil {
		return nil, err
	}
	for p.peek() == "|" {
		p.next()
		right, err := p.parseSimple()
		if err != nil {
			return nil, err
		}
		left = &tree.Node{Kind: tree.PIPE, Left: left, Right: right}
	}
	return left, nil
}

// parseSimple collects argv words up to the next operator, then any
// trailing redirections, each wrapping the command node in turn; REDIR_*
// kinds carry only Left.
func (p *parser) parseSimple() (*tree.Node, error) {
	var argv []string
	for !p.atEnd() {
		t := p.peek()
		if controlOps[t] {
			break
		}
		if _, isRedir := redirOps[t]; isRedir {
			break
		}
		argv = append(argv, p.next())
	}

	var n *tree.Node
	if len(argv) == 0 {
		n = &tree.Node{Kind: tree.EMPTY}
	} else {
		n = &tree.Node{Kind: tree.SIMPLE, Argv: argv}
	}

	for {
		kind, ok := redirOps[p.peek()]
		if !ok {
			break
		}
		p.next()
		if p.atEnd() || controlOps[p.peek()] {
			return nil, fmt.Errorf("treebuilder: redirection missing target")
		}
		target := p.next()
		n = &tree.Node{Kind: kind, Left: n, Argv: []string{target}}
	}
	return n, nil
}
