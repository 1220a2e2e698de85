package lang

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Expression tags of the wire shape.
const (
	wireExt   = "ext"
	wireRef   = "ref"
	wireFun   = "fun"
	wireNum   = "num"
	wireSel   = "sel"
	wireStr   = "str"
	wireCall  = "call"
	wireKV    = "kv"
	wireMem   = "mem"
	wireAttr  = "attr"
	wireCond  = "cond"
	wireBin   = "bin"
	wireUn    = "un"
	wirePar   = "paren"
	wireGlob  = "glob"
	wireThis  = "this"
	wireMacro = "macro"
	wireKw    = "kw"
)

// EncodeWire returns the wire shape of res: an object keyed by entry id.
// Comments and imports have no wire form and are omitted.
func EncodeWire(res *Resource) map[string]any {
	out := make(map[string]any, len(res.Entries))

	for _, e := range res.Entries {
		switch e := e.(type) {
		case *Entity:
			out[e.ID] = encodeEntity(e)
		case *Macro:
			out[e.ID] = encodeMacro(e)
		}
	}

	return out
}

// MarshalJSON encodes res in its wire shape.
func (res *Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(EncodeWire(res))
}

func encodeEntity(e *Entity) any {
	if s, ok := e.Value.(*Str); ok && len(e.Indices) == 0 && len(e.Attrs) == 0 {
		return s.Text
	}

	m := encodeValueFields(e.Value, "traits")

	if len(e.Indices) > 0 {
		m["idx"] = encodeExprs(e.Indices)
	}

	if len(e.Attrs) > 0 {
		attrs := make([]any, len(e.Attrs))

		for i, a := range e.Attrs {
			am := encodeValueFields(a.Value, "traits")
			am["id"] = a.ID

			if len(a.Indices) > 0 {
				am["idx"] = encodeExprs(a.Indices)
			}

			attrs[i] = am
		}

		m["attrs"] = attrs
	}

	return m
}

func encodeMacro(m *Macro) any {
	args := make([]any, len(m.Params))
	for i, p := range m.Params {
		args[i] = p.Name
	}

	return map[string]any{
		"type": wireMacro,
		"args": args,
		"expr": encodeExpr(m.Body),
	}
}

// encodeValueFields returns the object fields describing v. Hash variants are
// listed under members.
func encodeValueFields(v Value, members string) map[string]any {
	h, ok := v.(*Hash)
	if !ok {
		return map[string]any{"val": encodePattern(v)}
	}

	traits := make([]any, len(h.Variants))
	for i, variant := range h.Variants {
		traits[i] = map[string]any{
			"key": encodeKey(variant.Key),
			"val": encodePattern(variant.Value),
		}
	}

	m := map[string]any{members: traits}

	if h.Default != "" {
		if i := slices.Index(h.Keys(), h.Default); i >= 0 {
			m["def"] = i
		}
	}

	if h.DefaultIndex != nil {
		m["exp"] = encodeExpr(h.DefaultIndex)
	}

	return m
}

func encodePattern(v Value) any {
	switch v := v.(type) {
	case *Str:
		return v.Text
	case *ComplexStr:
		parts := make([]any, len(v.Parts))

		for i, part := range v.Parts {
			if s, ok := literal(part); ok {
				parts[i] = s
			} else {
				parts[i] = encodeExpr(part)
			}
		}

		return parts
	case *Hash:
		return encodeValueFields(v, "traits")
	default:
		return nil
	}
}

func encodeKey(key string) map[string]any {
	if isNumericKey(key) {
		return map[string]any{"type": wireNum, "val": key}
	}

	if ns, name, ok := strings.Cut(key, "/"); ok {
		return map[string]any{"type": wireKw, "name": name, "ns": ns}
	}

	return map[string]any{"type": wireKw, "name": key}
}

// isNumericKey reports whether key has the form -?digits(.digits)?.
func isNumericKey(key string) bool {
	key = strings.TrimPrefix(key, "-")

	whole, frac, dot := strings.Cut(key, ".")
	if whole == "" || (dot && frac == "") {
		return false
	}

	return allDigits(whole) && allDigits(frac)
}

func allDigits(s string) bool {
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}

	return true
}

func encodeExprs(es []Expr) []any {
	out := make([]any, len(es))
	for i, e := range es {
		out[i] = encodeExpr(e)
	}

	return out
}

func encodeExpr(e Expr) map[string]any {
	switch e := e.(type) {
	case *VarExpr:
		return map[string]any{"type": wireExt, "name": e.Name}

	case *IdentExpr:
		return map[string]any{"type": wireRef, "name": e.Name}

	case *NumExpr:
		return map[string]any{"type": wireNum, "val": e.Text}

	case *ValExpr:
		if h, ok := e.Value.(*Hash); ok {
			m := encodeValueFields(h, "vars")
			m["type"] = wireSel

			return m
		}

		return map[string]any{"type": wireStr, "val": encodePattern(e.Value)}

	case *CallExpr:
		callee := encodeExpr(e.Callee)
		if id, ok := e.Callee.(*IdentExpr); ok {
			callee = map[string]any{"type": wireFun, "name": id.Name}
		}

		return map[string]any{
			"type": wireCall,
			"name": callee,
			"args": encodeExprs(e.Args),
		}

	case *KVExpr:
		return map[string]any{
			"type": wireKV,
			"name": e.Name,
			"val":  encodeExpr(e.Value),
		}

	case *PropExpr:
		return encodeMember(wireMem, e.Obj, e.Key, e.Access)

	case *AttrExpr:
		return encodeMember(wireAttr, e.Obj, e.Key, e.Access)

	case *CondExpr:
		return map[string]any{
			"type": wireCond,
			"test": encodeExpr(e.Test),
			"cons": encodeExpr(e.Cons),
			"alt":  encodeExpr(e.Alt),
		}

	case *BinExpr:
		return map[string]any{
			"type":  wireBin,
			"op":    string(e.Op),
			"left":  encodeExpr(e.Left),
			"right": encodeExpr(e.Right),
		}

	case *UnExpr:
		return map[string]any{
			"type": wireUn,
			"op":   string(e.Op),
			"arg":  encodeExpr(e.Arg),
		}

	case *ParenExpr:
		return map[string]any{"type": wirePar, "exp": encodeExpr(e.Expr)}

	case *GlobalExpr:
		return map[string]any{"type": wireGlob, "name": e.Name}

	case *ThisExpr:
		return map[string]any{"type": wireThis}

	default:
		return nil
	}
}

func encodeMember(tag string, obj, key Expr, access Access) map[string]any {
	m := map[string]any{
		"type": tag,
		"obj":  encodeExpr(obj),
	}

	if id, ok := key.(*IdentExpr); ok && access == Static {
		m["key"] = id.Name
	} else {
		m["key"] = encodeExpr(key)
		m["computed"] = true
	}

	return m
}

// UnmarshalWire decodes a JSON document holding the wire shape.
func UnmarshalWire(b []byte) (*Resource, error) {
	var m map[string]any

	if err := json.Unmarshal(b, &m); err != nil {
		return nil, ErrDecodeWire.Wrap(err)
	}

	return DecodeWire(m)
}

// UnmarshalWireYAML decodes a YAML document holding the wire shape.
func UnmarshalWireYAML(b []byte) (*Resource, error) {
	var m map[string]any

	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, ErrDecodeWire.Wrap(err)
	}

	return DecodeWire(m)
}

// DecodeWire rebuilds a [Resource] from its wire shape. Entries are produced
// in sorted id order.
func DecodeWire(m map[string]any) (*Resource, error) {
	res := new(Resource)

	for _, id := range slices.Sorted(maps.Keys(m)) {
		if !isIdentifier(id) {
			return nil, wireError(strconv.Quote(id), "invalid identifier")
		}

		e, err := decodeEntry(id, m[id])
		if err != nil {
			return nil, err
		}

		res.Entries = append(res.Entries, e)
	}

	return res, nil
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if (i == 0 && !isIdentStart(r)) || !isIdentContinue(r) {
			return false
		}
	}

	return s != ""
}

func wireError(at, msg string) *Error {
	return ErrDecodeWire.Wrap(errors.New(at + ": " + msg)).
		With(slog.String("at", at))
}

// object is a decoded wire object.
type object map[string]any

func asObject(v any) (object, bool) {
	switch v := v.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		m := make(object, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = e
		}

		return m, true
	default:
		return nil, false
	}
}

func (o object) str(at, key string) (string, error) {
	s, ok := o[key].(string)
	if !ok {
		return "", wireError(at, "expected string field "+strconv.Quote(key))
	}

	return s, nil
}

func (o object) list(at, key string) ([]any, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}

	l, ok := v.([]any)
	if !ok {
		return nil, wireError(at, "expected array field "+strconv.Quote(key))
	}

	return l, nil
}

func (o object) expr(at, key string) (Expr, error) {
	v, ok := o[key]
	if !ok {
		return nil, wireError(at, "missing field "+strconv.Quote(key))
	}

	return decodeExpr(at+"."+key, v)
}

func decodeEntry(id string, v any) (Entry, error) {
	at := strconv.Quote(id)

	if s, ok := v.(string); ok {
		return &Entity{ID: id, Value: &Str{Text: s}}, nil
	}

	m, ok := asObject(v)
	if !ok {
		return nil, wireError(at, "expected string or object")
	}

	switch t := m["type"]; t {
	case nil:
	case wireMacro:
		return decodeMacro(at, id, m)
	default:
		return nil, wireError(at, fmt.Sprintf("unknown entry type %v", t))
	}

	value, err := decodeValueFields(at, m, "traits")
	if err != nil {
		return nil, err
	}

	ent := &Entity{ID: id, Value: value}

	if ent.Indices, err = decodeExprList(at+".idx", m, "idx"); err != nil {
		return nil, err
	}

	attrs, err := m.list(at, "attrs")
	if err != nil {
		return nil, err
	}

	for i, a := range attrs {
		aat := at + ".attrs[" + strconv.Itoa(i) + "]"

		am, ok := asObject(a)
		if !ok {
			return nil, wireError(aat, "expected object")
		}

		attr := new(Attr)

		if attr.ID, err = am.str(aat, "id"); err != nil {
			return nil, err
		}

		if attr.Value, err = decodeValueFields(aat, am, "traits"); err != nil {
			return nil, err
		}

		if attr.Indices, err = decodeExprList(aat+".idx", am, "idx"); err != nil {
			return nil, err
		}

		ent.Attrs = append(ent.Attrs, attr)
	}

	return ent, nil
}

func decodeMacro(at, id string, m object) (Entry, error) {
	args, err := m.list(at, "args")
	if err != nil {
		return nil, err
	}

	mac := &Macro{ID: id}

	for _, a := range args {
		name, ok := a.(string)
		if !ok || !isIdentifier(name) {
			return nil, wireError(at+".args", "expected parameter name")
		}

		if slices.ContainsFunc(mac.Params, func(v *VarExpr) bool { return v.Name == name }) {
			return nil, wireError(at+".args", "duplicate parameter "+strconv.Quote(name))
		}

		mac.Params = append(mac.Params, &VarExpr{Name: name})
	}

	if mac.Body, err = m.expr(at, "expr"); err != nil {
		return nil, err
	}

	return mac, nil
}

// decodeValueFields decodes an object holding either a hash (variants under
// members) or a pattern (under "val").
func decodeValueFields(at string, m object, members string) (Value, error) {
	if _, ok := m[members]; !ok {
		v, ok := m["val"]
		if !ok {
			return nil, wireError(at, "missing field \"val\"")
		}

		return decodePattern(at+".val", v)
	}

	traits, err := m.list(at, members)
	if err != nil {
		return nil, err
	}

	h := new(Hash)

	for i, t := range traits {
		tat := at + "." + members + "[" + strconv.Itoa(i) + "]"

		tm, ok := asObject(t)
		if !ok {
			return nil, wireError(tat, "expected object")
		}

		key, err := decodeKey(tat+".key", tm["key"])
		if err != nil {
			return nil, err
		}

		if _, dup := h.Lookup(key); dup {
			return nil, wireError(tat, "duplicate key "+strconv.Quote(key))
		}

		value, err := decodePattern(tat+".val", tm["val"])
		if err != nil {
			return nil, err
		}

		h.Variants = append(h.Variants, &Variant{Key: key, Value: value})
	}

	if def, ok := m["def"]; ok && def != nil {
		i, ok := wireInt(def)
		if !ok || i < 0 || i >= len(h.Variants) {
			return nil, wireError(at+".def", "index out of range")
		}

		h.Default = h.Variants[i].Key
	}

	if _, ok := m["exp"]; ok {
		if h.DefaultIndex, err = m.expr(at, "exp"); err != nil {
			return nil, err
		}
	}

	return h, nil
}

func decodePattern(at string, v any) (Value, error) {
	switch v := v.(type) {
	case string:
		return &Str{Text: v}, nil

	case []any:
		if len(v) == 0 {
			return &Str{}, nil
		}

		cs := &ComplexStr{Parts: make([]Expr, len(v))}

		for i, part := range v {
			if s, ok := part.(string); ok {
				cs.Parts[i] = text(s)

				continue
			}

			e, err := decodeExpr(at+"["+strconv.Itoa(i)+"]", part)
			if err != nil {
				return nil, err
			}

			cs.Parts[i] = e
		}

		return cs, nil

	default:
		m, ok := asObject(v)
		if !ok {
			return nil, wireError(at, "expected string, array or object")
		}

		return decodeValueFields(at, m, "traits")
	}
}

func decodeKey(at string, v any) (string, error) {
	m, ok := asObject(v)
	if !ok {
		return "", wireError(at, "expected keyword or number")
	}

	switch m["type"] {
	case wireKw:
		name, err := m.str(at, "name")
		if err != nil {
			return "", err
		}

		if ns, ok := m["ns"].(string); ok {
			return ns + "/" + name, nil
		}

		return name, nil

	case wireNum:
		if s, ok := wireNumText(m["val"]); ok {
			return s, nil
		}

		return "", wireError(at, "expected numeric field \"val\"")

	default:
		return "", wireError(at, "expected keyword or number")
	}
}

func decodeExprList(at string, m object, key string) ([]Expr, error) {
	l, err := m.list(at, key)
	if err != nil {
		return nil, err
	}

	var out []Expr

	for i, v := range l {
		e, err := decodeExpr(at+"["+strconv.Itoa(i)+"]", v)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}

func decodeExpr(at string, v any) (Expr, error) {
	m, ok := asObject(v)
	if !ok {
		return nil, wireError(at, "expected expression object")
	}

	tag, _ := m["type"].(string)

	switch tag {
	case wireExt:
		name, err := m.str(at, "name")
		if err != nil {
			return nil, err
		}

		return &VarExpr{Name: name}, nil

	case wireRef, wireFun:
		name, err := m.str(at, "name")
		if err != nil {
			return nil, err
		}

		return &IdentExpr{Name: name}, nil

	case wireNum:
		s, ok := wireNumText(m["val"])
		if !ok {
			return nil, wireError(at, "expected numeric field \"val\"")
		}

		return &NumExpr{Text: s}, nil

	case wireSel:
		h, err := decodeValueFields(at, m, "vars")
		if err != nil {
			return nil, err
		}

		return &ValExpr{Value: h}, nil

	case wireStr:
		v, err := decodePattern(at+".val", m["val"])
		if err != nil {
			return nil, err
		}

		return &ValExpr{Value: v}, nil

	case wireCall:
		callee, err := m.expr(at, "name")
		if err != nil {
			return nil, err
		}

		args, err := decodeExprList(at+".args", m, "args")
		if err != nil {
			return nil, err
		}

		return &CallExpr{Callee: callee, Args: args}, nil

	case wireKV:
		name, err := m.str(at, "name")
		if err != nil {
			return nil, err
		}

		val, err := m.expr(at, "val")
		if err != nil {
			return nil, err
		}

		return &KVExpr{Name: name, Value: val}, nil

	case wireMem, wireAttr:
		obj, err := m.expr(at, "obj")
		if err != nil {
			return nil, err
		}

		var (
			key    Expr
			access = Static
		)

		if computed, _ := m["computed"].(bool); computed {
			access = Computed

			if key, err = m.expr(at, "key"); err != nil {
				return nil, err
			}
		} else {
			name, err := m.str(at, "key")
			if err != nil {
				return nil, err
			}

			key = &IdentExpr{Name: name}
		}

		if tag == wireAttr {
			return &AttrExpr{Obj: obj, Key: key, Access: access}, nil
		}

		return &PropExpr{Obj: obj, Key: key, Access: access}, nil

	case wireCond:
		var (
			c   CondExpr
			err error
		)

		if c.Test, err = m.expr(at, "test"); err != nil {
			return nil, err
		}

		if c.Cons, err = m.expr(at, "cons"); err != nil {
			return nil, err
		}

		if c.Alt, err = m.expr(at, "alt"); err != nil {
			return nil, err
		}

		return &c, nil

	case wireBin:
		op, err := m.str(at, "op")
		if err != nil {
			return nil, err
		}

		if !slices.ContainsFunc(binaryLevels[:], func(ops []BinOp) bool {
			return slices.Contains(ops, BinOp(op))
		}) {
			return nil, wireError(at, "unknown binary operator "+strconv.Quote(op))
		}

		left, err := m.expr(at, "left")
		if err != nil {
			return nil, err
		}

		right, err := m.expr(at, "right")
		if err != nil {
			return nil, err
		}

		return &BinExpr{Left: left, Op: BinOp(op), Right: right}, nil

	case wireUn:
		op, err := m.str(at, "op")
		if err != nil {
			return nil, err
		}

		switch UnOp(op) {
		case OpPlus, OpMinus, OpNot:
		default:
			return nil, wireError(at, "unknown unary operator "+strconv.Quote(op))
		}

		arg, err := m.expr(at, "arg")
		if err != nil {
			return nil, err
		}

		return &UnExpr{Op: UnOp(op), Arg: arg}, nil

	case wirePar:
		e, err := m.expr(at, "exp")
		if err != nil {
			return nil, err
		}

		return &ParenExpr{Expr: e}, nil

	case wireGlob:
		name, err := m.str(at, "name")
		if err != nil {
			return nil, err
		}

		return &GlobalExpr{Name: name}, nil

	case wireThis:
		return &ThisExpr{}, nil

	default:
		return nil, wireError(at, "unknown expression type "+strconv.Quote(tag))
	}
}

// wireInt converts a decoded number to int.
func wireInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}

		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}

		return int(n), true
	case json.Number:
		i, err := n.Int64()

		return int(i), err == nil
	default:
		return 0, false
	}
}

// wireNumText returns the source text of a numeric literal, which the wire
// shape carries as a string or a number.
func wireNumText(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, isNumericKey(n)
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case json.Number:
		return n.String(), true
	default:
		return "", false
	}
}
