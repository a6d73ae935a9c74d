package grammar

import (
	"fmt"
	"strings"

	verr "github.com/nihei9/tarkan/error"
	"github.com/nihei9/tarkan/spec"
)

// LexemeType is the argument type of values produced by terminals. A shifted token carries its lexeme.
const LexemeType = "string"

const DefaultStartRule = "start"

type RuleID int

type ComponentKind int

const (
	ComponentKindRule ComponentKind = iota
	ComponentKindLiteral
	ComponentKindRegex
	ComponentKindWildcard
)

type Component struct {
	Kind ComponentKind

	// Text is a rule name, the text of a literal, or a regex pattern. It is empty for the wildcard.
	Text string

	// Rule is valid only when Kind is ComponentKindRule.
	Rule RuleID

	Binding string
	Row     int
	Col     int
}

func (c *Component) token() (Token, bool) {
	switch c.Kind {
	case ComponentKindLiteral:
		return Token{Kind: TokenKindLiteral, Text: c.Text}, true
	case ComponentKindRegex:
		return Token{Kind: TokenKindRegex, Text: c.Text}, true
	}
	return Token{}, false
}

func (c *Component) String() string {
	switch c.Kind {
	case ComponentKindRule:
		return c.Text
	case ComponentKindWildcard:
		return "*"
	}
	tok, _ := c.token()
	return tok.String()
}

type Alternative struct {
	Components []*Component

	// Code is the reduction body including its braces. When it is empty, the alternative passes the value of
	// its only component through.
	Code string

	Row int
	Col int
}

func (a *Alternative) PassThrough() bool {
	return a.Code == ""
}

type Rule struct {
	ID           RuleID
	Name         string
	Type         string
	Alternatives []*Alternative
	Row          int
	Col          int
}

type Member struct {
	Name string
	Type string
}

// Position is a dotted position inside an alternative. Dot is the number of components already consumed.
type Position struct {
	Rule        RuleID
	Alternative int
	Dot         int
}

func (p Position) Advance() Position {
	p.Dot++
	return p
}

func (p Position) Reductend() ReductendPosition {
	return ReductendPosition{
		Rule:        p.Rule,
		Alternative: p.Alternative,
	}
}

func comparePositions(a, b Position) int {
	switch {
	case a.Rule != b.Rule:
		return int(a.Rule) - int(b.Rule)
	case a.Alternative != b.Alternative:
		return a.Alternative - b.Alternative
	}
	return a.Dot - b.Dot
}

func positionComparator(a, b interface{}) int {
	return comparePositions(a.(Position), b.(Position))
}

// ReductendPosition identifies a whole alternative. It is the key of a reduction.
type ReductendPosition struct {
	Rule        RuleID
	Alternative int
}

type Grammar struct {
	name        string
	rules       []*Rule
	ruleIDs     map[string]RuleID
	members     map[string]*Member
	start       RuleID
	tokens      []Token
	exportTypes []string
	first       *firstSet
}

func (g *Grammar) Name() string {
	return g.name
}

func (g *Grammar) Rules() []*Rule {
	return g.rules
}

func (g *Grammar) RuleByID(id RuleID) (*Rule, bool) {
	if id < 0 || int(id) >= len(g.rules) {
		return nil, false
	}
	return g.rules[id], true
}

func (g *Grammar) RuleByName(name string) (*Rule, bool) {
	id, ok := g.ruleIDs[name]
	if !ok {
		return nil, false
	}
	return g.rules[id], true
}

func (g *Grammar) AlternativeByPosition(p Position) (*Alternative, bool) {
	rule, ok := g.RuleByID(p.Rule)
	if !ok {
		return nil, false
	}
	if p.Alternative < 0 || p.Alternative >= len(rule.Alternatives) {
		return nil, false
	}
	alt := rule.Alternatives[p.Alternative]
	if p.Dot < 0 || p.Dot > len(alt.Components) {
		return nil, false
	}
	return alt, true
}

// ComponentByPosition returns the component right after the dot. It returns false for a final position.
func (g *Grammar) ComponentByPosition(p Position) (*Component, bool) {
	alt, ok := g.AlternativeByPosition(p)
	if !ok || p.Dot == len(alt.Components) {
		return nil, false
	}
	return alt.Components[p.Dot], true
}

func (g *Grammar) InitialPositions(rule RuleID) []Position {
	r, ok := g.RuleByID(rule)
	if !ok {
		return nil
	}
	ps := make([]Position, len(r.Alternatives))
	for i := range r.Alternatives {
		ps[i] = Position{
			Rule:        rule,
			Alternative: i,
		}
	}
	return ps
}

func (g *Grammar) StartRule() RuleID {
	return g.start
}

// RootType is the exported type of the start rule. It is the result type of a parse.
func (g *Grammar) RootType() string {
	return g.exportTypes[g.start]
}

// ExportType returns the type values of a rule have. It is empty when the type can't be determined.
func (g *Grammar) ExportType(rule RuleID) string {
	if rule < 0 || int(rule) >= len(g.exportTypes) {
		return ""
	}
	return g.exportTypes[rule]
}

// Tokens returns the token universe: EOF, then every token in order of first appearance.
func (g *Grammar) Tokens() []Token {
	return g.tokens
}

// ArgType returns the type of the value a component contributes to a reduction.
func (g *Grammar) ArgType(c *Component) (string, error) {
	if c.Kind != ComponentKindRule {
		return LexemeType, nil
	}
	if t := g.ExportType(c.Rule); t != "" {
		return t, nil
	}
	if m, ok := g.members[c.Binding]; ok && c.Binding != "" {
		return m.Type, nil
	}
	return "", SemErrUninferableType
}

// ItemView renders a position like `expr -> expr • "+" term`.
func (g *Grammar) ItemView(p Position) string {
	rule, ok := g.RuleByID(p.Rule)
	if !ok {
		return fmt.Sprintf("<invalid position %v>", p)
	}
	alt, ok := g.AlternativeByPosition(p)
	if !ok {
		return fmt.Sprintf("<invalid position %v>", p)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v ->", rule.Name)
	for i, c := range alt.Components {
		if i == p.Dot {
			fmt.Fprintf(&b, " •")
		}
		fmt.Fprintf(&b, " %v", c)
	}
	if p.Dot == len(alt.Components) {
		fmt.Fprintf(&b, " •")
	}
	return b.String()
}

// AlternativeView renders an alternative without a dot.
func (g *Grammar) AlternativeView(r ReductendPosition) string {
	rule, ok := g.RuleByID(r.Rule)
	if !ok || r.Alternative < 0 || r.Alternative >= len(rule.Alternatives) {
		return fmt.Sprintf("<invalid alternative %v>", r)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v ->", rule.Name)
	for _, c := range rule.Alternatives[r.Alternative].Components {
		fmt.Fprintf(&b, " %v", c)
	}
	return b.String()
}

type GrammarBuilder struct {
	AST *spec.RootNode

	// Name names the grammar. It becomes the name of the lexical specification and of generated files.
	Name string

	// StartRule overrides DefaultStartRule.
	StartRule string

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	name := b.Name
	if name == "" {
		name = "parser"
	}
	g := &Grammar{
		name:    name,
		ruleIDs: map[string]RuleID{},
		members: map[string]*Member{},
		tokens:  []Token{TokenEOF},
	}

	b.genRules(g)
	b.genMembers(g)

	startName := b.StartRule
	if startName == "" {
		startName = DefaultStartRule
	}
	if id, ok := g.ruleIDs[startName]; ok {
		g.start = id
	} else {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  SemErrMissingStartRule,
			Detail: startName,
		})
	}

	usesWildcard := b.resolveComponents(g)
	if usesWildcard && len(g.tokens) == 1 {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrEmptyWildcard,
		})
	}
	b.checkAlternatives(g)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	b.resolveTypes(g)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	tracer().Debugf("grammar %v: %v rules, %v tokens, start rule %v", g.name, len(g.rules), len(g.tokens), startName)

	return g, nil
}

func (b *GrammarBuilder) genRules(g *Grammar) {
	for _, n := range b.AST.Rules {
		if _, ok := g.ruleIDs[n.Name]; ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateRule,
				Detail: n.Name,
				Row:    n.Pos.Row,
				Col:    n.Pos.Col,
			})
			continue
		}
		rule := &Rule{
			ID:   RuleID(len(g.rules)),
			Name: n.Name,
			Type: n.Type,
			Row:  n.Pos.Row,
			Col:  n.Pos.Col,
		}
		for _, an := range n.Alternatives {
			alt := &Alternative{
				Code: an.Code,
				Row:  an.Pos.Row,
				Col:  an.Pos.Col,
			}
			for _, cn := range an.Components {
				alt.Components = append(alt.Components, &Component{
					Kind:    toComponentKind(cn.Kind),
					Text:    cn.Value,
					Binding: cn.Binding,
					Row:     cn.Pos.Row,
					Col:     cn.Pos.Col,
				})
			}
			rule.Alternatives = append(rule.Alternatives, alt)
		}
		g.ruleIDs[rule.Name] = rule.ID
		g.rules = append(g.rules, rule)
	}
}

func toComponentKind(k spec.ComponentKind) ComponentKind {
	switch k {
	case spec.ComponentKindLiteral:
		return ComponentKindLiteral
	case spec.ComponentKindRegex:
		return ComponentKindRegex
	case spec.ComponentKindWildcard:
		return ComponentKindWildcard
	}
	return ComponentKindRule
}

func (b *GrammarBuilder) genMembers(g *Grammar) {
	for _, n := range b.AST.Members {
		if _, ok := g.members[n.Name]; ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateMember,
				Detail: n.Name,
				Row:    n.Pos.Row,
				Col:    n.Pos.Col,
			})
			continue
		}
		g.members[n.Name] = &Member{
			Name: n.Name,
			Type: n.Type,
		}
	}
}

// resolveComponents binds rule references to rule IDs and collects the token universe. It reports whether
// the grammar uses the wildcard.
func (b *GrammarBuilder) resolveComponents(g *Grammar) bool {
	seen := map[Token]struct{}{
		TokenEOF: {},
	}
	usesWildcard := false
	for _, rule := range g.rules {
		for _, alt := range rule.Alternatives {
			for _, c := range alt.Components {
				switch c.Kind {
				case ComponentKindRule:
					id, ok := g.ruleIDs[c.Text]
					if !ok {
						b.errs = append(b.errs, &verr.SpecError{
							Cause:  SemErrUnknownRule,
							Detail: c.Text,
							Row:    c.Row,
							Col:    c.Col,
						})
						continue
					}
					c.Rule = id
				case ComponentKindWildcard:
					usesWildcard = true
				default:
					tok, _ := c.token()
					if _, ok := seen[tok]; ok {
						continue
					}
					seen[tok] = struct{}{}
					g.tokens = append(g.tokens, tok)
				}
			}
		}
	}
	return usesWildcard
}

func (b *GrammarBuilder) checkAlternatives(g *Grammar) {
	for _, rule := range g.rules {
		for _, alt := range rule.Alternatives {
			if alt.PassThrough() && len(alt.Components) != 1 {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  SemErrMissingReductionBody,
					Detail: rule.Name,
					Row:    alt.Row,
					Col:    alt.Col,
				})
			}

			bound := map[string]struct{}{}
			for _, c := range alt.Components {
				if c.Binding == "" {
					continue
				}
				if _, ok := bound[c.Binding]; ok {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrDuplicateBinding,
						Detail: c.Binding,
						Row:    c.Row,
						Col:    c.Col,
					})
					continue
				}
				bound[c.Binding] = struct{}{}
			}
		}
	}
}

func (b *GrammarBuilder) resolveTypes(g *Grammar) {
	r := &typeResolver{
		g:        g,
		resolved: make([]bool, len(g.rules)),
		visiting: make([]bool, len(g.rules)),
		types:    make([]string, len(g.rules)),
	}
	for _, rule := range g.rules {
		r.resolve(rule.ID)
	}
	g.exportTypes = r.types

	reported := make([]bool, len(g.rules))
	for _, rule := range g.rules {
		for _, alt := range rule.Alternatives {
			if !alt.PassThrough() && g.ExportType(rule.ID) == "" {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  SemErrUninferableType,
					Detail: fmt.Sprintf("rule %v needs a type to return from its reduction", rule.Name),
					Row:    alt.Row,
					Col:    alt.Col,
				})
				reported[rule.ID] = true
			}

			for _, c := range alt.Components {
				if c.Binding == "" && !alt.PassThrough() {
					continue
				}
				typ, err := g.ArgType(c)
				if err != nil {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  err,
						Detail: fmt.Sprintf("rule %v exports no type", c.Text),
						Row:    c.Row,
						Col:    c.Col,
					})
					reported[rule.ID] = true
					continue
				}
				if alt.PassThrough() && rule.Type != "" && typ != rule.Type {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrTypeMismatch,
						Detail: fmt.Sprintf("rule %v returns %v but %v is %v", rule.Name, rule.Type, c, typ),
						Row:    c.Row,
						Col:    c.Col,
					})
					reported[rule.ID] = true
				}
			}
		}
	}

	if g.RootType() == "" && !reported[g.start] {
		start := g.rules[g.start]
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  SemErrUninferableType,
			Detail: fmt.Sprintf("the start rule %v needs a type", start.Name),
			Row:    start.Row,
			Col:    start.Col,
		})
	}
}

// typeResolver determines the exported type of every rule. An undeclared type is inferred only from
// pass-through alternatives that all agree on one type.
type typeResolver struct {
	g        *Grammar
	resolved []bool
	visiting []bool
	types    []string
}

func (r *typeResolver) resolve(id RuleID) string {
	if r.resolved[id] {
		return r.types[id]
	}
	if r.visiting[id] {
		return ""
	}
	rule := r.g.rules[id]
	if rule.Type != "" {
		r.resolved[id] = true
		r.types[id] = rule.Type
		return rule.Type
	}

	r.visiting[id] = true
	typ := ""
	for _, alt := range rule.Alternatives {
		if !alt.PassThrough() || len(alt.Components) != 1 {
			typ = ""
			break
		}
		c := alt.Components[0]
		var t string
		if c.Kind == ComponentKindRule {
			t = r.resolve(c.Rule)
			if t == "" {
				if m, ok := r.g.members[c.Binding]; ok && c.Binding != "" {
					t = m.Type
				}
			}
		} else {
			t = LexemeType
		}
		if t == "" || (typ != "" && t != typ) {
			typ = ""
			break
		}
		typ = t
	}
	r.visiting[id] = false

	r.resolved[id] = true
	r.types[id] = typ
	return typ
}
