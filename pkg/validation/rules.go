package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/message"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

// ruleKind tags one atomic sub-rule of a constraint. The declaration order of
// the kinds is the evaluation order inside a constraint.
type ruleKind uint8

const (
	rulePattern ruleKind = iota
	ruleMin
	ruleMax
	ruleFormat
	ruleEnum
)

// perElement reports whether the rule applies to each element of a
// multi-valued field rather than to the collection as a whole.
func (k ruleKind) perElement() bool {
	return k == rulePattern || k == ruleFormat || k == ruleEnum
}

// failure is a failed rule. Malformed failures come from bad constraint
// parameters and keep their diagnostic message.
type failure struct {
	message   string
	malformed bool
}

type evalContext struct {
	printer    *message.Printer
	dataType   inputspec.DataType
	collection bool
}

func (ec *evalContext) fail(key string, args ...any) *failure {
	return &failure{message: ec.printer.Sprintf(key, args...)}
}

func (ec *evalContext) malformed(key string, args ...any) *failure {
	return &failure{message: ec.printer.Sprintf(key, args...), malformed: true}
}

type ruleFunc func(ec *evalContext, c *inputspec.Constraint, value any) *failure

var ruleTable = map[ruleKind]ruleFunc{
	rulePattern: checkPattern,
	ruleMin:     func(ec *evalContext, c *inputspec.Constraint, v any) *failure { return checkBound(ec, c.Min, v, true) },
	ruleMax:     func(ec *evalContext, c *inputspec.Constraint, v any) *failure { return checkBound(ec, c.Max, v, false) },
	ruleFormat:  checkFormat,
	ruleEnum:    checkEnum,
}

// compileRules lists the sub-rules a constraint defines, in evaluation order.
func compileRules(c *inputspec.Constraint) []ruleKind {
	kinds := make([]ruleKind, 0, 5)
	if c.Pattern != "" {
		kinds = append(kinds, rulePattern)
	}
	if c.Min != nil {
		kinds = append(kinds, ruleMin)
	}
	if c.Max != nil {
		kinds = append(kinds, ruleMax)
	}
	if c.Format != "" {
		kinds = append(kinds, ruleFormat)
	}
	if len(c.EnumValues) > 0 {
		kinds = append(kinds, ruleEnum)
	}
	return kinds
}

const patternCacheSize = 512

type compiledPattern struct {
	re  *regexp.Regexp
	err error
}

// patterns holds anchored compilations keyed by the declared pattern.
var patterns, _ = lru.New[string, compiledPattern](patternCacheSize)

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if c, ok := patterns.Get(pattern); ok {
		return c.re, c.err
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	patterns.Add(pattern, compiledPattern{re: re, err: err})
	return re, err
}

// checkPattern requires the whole string value to match.
func checkPattern(ec *evalContext, c *inputspec.Constraint, v any) *failure {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	re, err := compilePattern(c.Pattern)
	if err != nil {
		return ec.malformed(msgBadPattern, err.Error())
	}
	if !re.MatchString(s) {
		return ec.fail(msgPattern)
	}
	return nil
}

// checkBound applies min/max: element count for collections, character
// length for STRING, numeric value for NUMBER and chronology for DATE.
func checkBound(ec *evalContext, param any, v any, lower bool) *failure {
	side := "max"
	if lower {
		side = "min"
	}

	if ec.collection {
		list, ok := asList(v)
		if !ok {
			return nil
		}
		n, ok := boundCount(param)
		if !ok {
			return ec.malformed(msgBadBound, side, param)
		}
		if lower && len(list) < n {
			return ec.fail(msgMinItems, n)
		}
		if !lower && len(list) > n {
			return ec.fail(msgMaxItems, n)
		}
		return nil
	}

	switch ec.dataType {
	case inputspec.DataTypeString:
		s, ok := v.(string)
		if !ok {
			return nil
		}
		n, ok := boundCount(param)
		if !ok {
			return ec.malformed(msgBadBound, side, param)
		}
		length := utf8.RuneCountInString(s)
		if lower && length < n {
			return ec.fail(msgMinLength, n)
		}
		if !lower && length > n {
			return ec.fail(msgMaxLength, n)
		}

	case inputspec.DataTypeNumber:
		f, ok := toFloat(v)
		if !ok {
			return nil
		}
		b, ok := boundNumber(param)
		if !ok {
			return ec.malformed(msgBadBound, side, param)
		}
		if lower && f < b {
			return ec.fail(msgMinValue, formatNumber(b))
		}
		if !lower && f > b {
			return ec.fail(msgMaxValue, formatNumber(b))
		}

	case inputspec.DataTypeDate:
		d, err := parseDate(v)
		if err != nil {
			return nil
		}
		b, err := parseDate(param)
		if err != nil {
			return ec.malformed(msgBadBound, side, param)
		}
		if lower && d.Before(b) {
			return ec.fail(msgMinDate, b.Format("2006-01-02"))
		}
		if !lower && d.After(b) {
			return ec.fail(msgMaxDate, b.Format("2006-01-02"))
		}
	}
	return nil
}

func boundNumber(param any) (float64, bool) {
	if f, ok := toFloat(param); ok {
		return f, true
	}
	if s, ok := param.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

func boundCount(param any) (int, bool) {
	f, ok := boundNumber(param)
	if !ok || f < 0 || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// checkFormat enforces known named formats on string values.
func checkFormat(ec *evalContext, c *inputspec.Constraint, v any) *failure {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	check, known := lookupFormat(c.Format)
	if !known {
		return nil
	}
	if !check(s) {
		return ec.fail(msgFormat, c.Format)
	}
	return nil
}

// checkEnum requires membership in the constraint's fixed alias list.
func checkEnum(ec *evalContext, c *inputspec.Constraint, v any) *failure {
	if memberOf(v, c.EnumValues) {
		return nil
	}
	return ec.fail(msgEnum)
}

func memberOf(v any, domain []inputspec.ValueAlias) bool {
	for _, alias := range domain {
		if sameValue(v, alias.Value) {
			return true
		}
	}
	return false
}
