package pnnx

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MagicNumber is the first line of every .param file.
const MagicNumber = "7767517"

// Load parses a .param graph definition and resolves its weight attributes
// against the .bin container at binPath.
func Load(paramPath, binPath string) (*Graph, error) {
	store, err := ReadWeights(binPath)
	if err != nil {
		return nil, fmt.Errorf("load weights %s: %w", binPath, err)
	}
	return loadParam(paramPath, store)
}

//nolint:gosec // G304: path comes from trusted caller, not user input.
func loadParam(paramPath string, store *WeightStore) (*Graph, error) {
	f, err := os.Open(paramPath)
	if err != nil {
		return nil, fmt.Errorf("open param file: %w", err)
	}
	defer func() {
		_ = f.Close() // Ignore close error on read-only file.
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	p := &parser{
		store:    store,
		operands: make(map[string]*Operand),
	}
	graph := &Graph{}

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: missing magic line", ErrMalformedParam)
	}
	if strings.TrimSpace(scanner.Text()) != MagicNumber {
		return nil, fmt.Errorf("%w: expected %s, got %q", ErrInvalidMagic, MagicNumber, scanner.Text())
	}

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: missing count line", ErrMalformedParam)
	}
	counts := strings.Fields(scanner.Text())
	if len(counts) != 2 {
		return nil, fmt.Errorf("%w: count line must hold operator and operand counts", ErrMalformedParam)
	}
	operatorCount, err := strconv.Atoi(counts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad operator count %q", ErrMalformedParam, counts[0])
	}

	line := 2
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		op, err := p.parseOperator(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		graph.Operators = append(graph.Operators, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read param file: %w", err)
	}

	if len(graph.Operators) != operatorCount {
		return nil, fmt.Errorf("%w: declared %d operators, found %d",
			ErrMalformedParam, operatorCount, len(graph.Operators))
	}

	graph.Operands = p.order
	return graph, nil
}

type parser struct {
	store    *WeightStore
	operands map[string]*Operand
	order    []*Operand
}

// operand returns the operand with the given id, creating it on first use.
func (p *parser) operand(id string) *Operand {
	if o, ok := p.operands[id]; ok {
		return o
	}
	o := &Operand{Name: id}
	p.operands[id] = o
	p.order = append(p.order, o)
	return o
}

func (p *parser) parseOperator(text string) (*Operator, error) {
	fields := strings.Fields(text)
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: operator line needs type, name and io counts", ErrMalformedParam)
	}

	op := &Operator{
		Type:   fields[0],
		Name:   fields[1],
		Params: make(map[string]Parameter),
		Attrs:  make(map[string]Attribute),
	}

	inputCount, err := strconv.Atoi(fields[2])
	if err != nil || inputCount < 0 {
		return nil, fmt.Errorf("%w: bad input count %q", ErrMalformedParam, fields[2])
	}
	outputCount, err := strconv.Atoi(fields[3])
	if err != nil || outputCount < 0 {
		return nil, fmt.Errorf("%w: bad output count %q", ErrMalformedParam, fields[3])
	}

	rest := fields[4:]
	if len(rest) < inputCount+outputCount {
		return nil, fmt.Errorf("%w: operator %s declares %d+%d operands, line holds %d tokens",
			ErrMalformedParam, op.Name, inputCount, outputCount, len(rest))
	}

	for _, id := range rest[:inputCount] {
		operand := p.operand(id)
		operand.Consumers = append(operand.Consumers, op)
		op.Inputs = append(op.Inputs, operand)
	}
	for _, id := range rest[inputCount : inputCount+outputCount] {
		operand := p.operand(id)
		operand.Producer = op
		op.Outputs = append(op.Outputs, operand)
	}

	for _, token := range rest[inputCount+outputCount:] {
		if err := p.parseToken(op, token); err != nil {
			return nil, err
		}
	}
	return op, nil
}

// parseToken handles one trailing key=value token of an operator line.
func (p *parser) parseToken(op *Operator, token string) error {
	key, value, ok := strings.Cut(token, "=")
	if !ok {
		return fmt.Errorf("%w: token %q is not key=value", ErrMalformedParam, token)
	}

	switch {
	case strings.HasPrefix(key, "@"):
		name := key[1:]
		attr, err := p.resolveAttribute(op.Name+"."+name, value)
		if err != nil {
			return fmt.Errorf("operator %s attribute %s: %w", op.Name, name, err)
		}
		op.Attrs[name] = attr
	case strings.HasPrefix(key, "#"):
		operand := p.operand(key[1:])
		shape, typeCode, err := parseShapeSpec(value)
		if err != nil {
			return fmt.Errorf("operator %s operand %s: %w", op.Name, key[1:], err)
		}
		operand.Shape = shape
		operand.Type = typeCode
	default:
		op.Params[key] = parseParameter(value)
	}
	return nil
}

// resolveAttribute validates the declared shape against the weight container
// entry and returns the attribute with data attached.
func (p *parser) resolveAttribute(storeKey, spec string) (Attribute, error) {
	shape, typeCode, err := parseShapeSpec(spec)
	if err != nil {
		return Attribute{}, err
	}
	entry, err := p.store.Get(storeKey)
	if err != nil {
		return Attribute{}, err
	}
	declared := 1
	for _, d := range shape {
		declared *= d
	}
	if declared*4 != len(entry.Data) {
		return Attribute{}, fmt.Errorf("declared shape %v needs %d bytes, container holds %d",
			shape, declared*4, len(entry.Data))
	}
	return Attribute{Type: typeCode, Shape: shape, Data: entry.Data}, nil
}

// parseShapeSpec parses "(d0,d1,...)f32" into dimensions and a type code.
func parseShapeSpec(spec string) ([]int, int, error) {
	open := strings.IndexByte(spec, '(')
	closing := strings.IndexByte(spec, ')')
	if open != 0 || closing < 0 {
		return nil, 0, fmt.Errorf("%w: bad shape spec %q", ErrMalformedParam, spec)
	}

	typeCode := OperandTypeUnknown
	switch suffix := spec[closing+1:]; suffix {
	case "f32", "":
		if suffix == "f32" {
			typeCode = OperandTypeFloat32
		}
	default:
		return nil, 0, fmt.Errorf("%w: unsupported element type %q", ErrMalformedParam, suffix)
	}

	var dims []int
	for _, part := range strings.Split(spec[open+1:closing], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: bad dimension %q", ErrMalformedParam, part)
		}
		dims = append(dims, d)
	}
	return dims, typeCode, nil
}

// parseParameter decodes a parameter value token into a typed Parameter.
//
// Rules, checked in order: "None" is the explicit unknown kind; "True"/"False"
// are bools; "(...)" is an array whose element kind is sniffed from the first
// element; numeric tokens with '.' or exponent are floats; other numeric
// tokens are ints; everything else is a string.
func parseParameter(value string) Parameter {
	switch value {
	case "None":
		return Parameter{Kind: ParamUnknown}
	case "True":
		return Parameter{Kind: ParamBool, B: true}
	case "False":
		return Parameter{Kind: ParamBool, B: false}
	}

	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		return parseArrayParameter(value[1 : len(value)-1])
	}

	if isFloatToken(value) {
		if f, err := strconv.ParseFloat(value, 32); err == nil {
			return Parameter{Kind: ParamFloat, F: float32(f)}
		}
	}
	if i, err := strconv.Atoi(value); err == nil {
		return Parameter{Kind: ParamInt, I: i}
	}
	return Parameter{Kind: ParamString, S: value}
}

func parseArrayParameter(body string) Parameter {
	var elems []string
	if body != "" {
		for _, e := range strings.Split(body, ",") {
			elems = append(elems, strings.TrimSpace(e))
		}
	}
	if len(elems) == 0 {
		return Parameter{Kind: ParamIntArray}
	}

	if isFloatToken(elems[0]) {
		floats := make([]float32, 0, len(elems))
		for _, e := range elems {
			f, err := strconv.ParseFloat(e, 32)
			if err != nil {
				return stringArrayParameter(elems)
			}
			floats = append(floats, float32(f))
		}
		return Parameter{Kind: ParamFloatArray, Floats: floats}
	}

	ints := make([]int, 0, len(elems))
	for _, e := range elems {
		i, err := strconv.Atoi(e)
		if err != nil {
			return stringArrayParameter(elems)
		}
		ints = append(ints, i)
	}
	return Parameter{Kind: ParamIntArray, Ints: ints}
}

func stringArrayParameter(elems []string) Parameter {
	return Parameter{Kind: ParamStringArray, Strings: elems}
}

// isFloatToken reports whether a numeric token should parse as float.
func isFloatToken(s string) bool {
	if !strings.ContainsAny(s, ".eE") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
