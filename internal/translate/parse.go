package translate

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/crucible-convert/internal/mapping"
)

// annotationPrefix starts every rendered annotation line.
const annotationPrefix = indentUnit + "# "

// ParseItems reads text produced by RenderItem or RenderDocument back into
// translations. Item-level comment lines become CategoryComment annotations;
// document-level comments (headers, failure placeholders) are skipped.
//
// Precondition: text is assembler output.
// Postcondition: rendering the returned translations in order reproduces the
// item text of the input byte for byte, or a non-nil error is returned.
func ParseItems(text string) ([]*Translation, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("parsing target yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == tagNull {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: target document root must be a mapping: %w", root.Line, ErrMalformed)
	}

	out := make([]*Translation, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		item, err := parseItem(root.Content[i], root.Content[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, &Translation{Item: item})
	}

	comments, err := scanAnnotations(text)
	if err != nil {
		return nil, err
	}
	if len(comments) != len(out) {
		return nil, fmt.Errorf("found %d item headers but %d items: %w", len(comments), len(out), ErrMalformed)
	}
	for i, tr := range out {
		tr.Annotations = comments[i]
	}
	return out, nil
}

// scanAnnotations collects the comment lines under each top-level key.
func scanAnnotations(text string) ([][]Annotation, error) {
	var out [][]Annotation
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
		case line[0] != ' ' && line[0] != '#':
			out = append(out, nil)
		case strings.HasPrefix(line, annotationPrefix) && len(out) > 0:
			msg := strings.TrimPrefix(line, annotationPrefix)
			out[len(out)-1] = append(out[len(out)-1], Annotation{Category: CategoryComment, Message: msg})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning comments: %w", err)
	}
	return out, nil
}

func parseItem(key, body *yaml.Node) (*TargetItem, error) {
	it := &TargetItem{ID: key.Value}
	if body.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: item %q must be a mapping: %w", body.Line, key.Value, ErrMalformed)
	}
	for i := 0; i+1 < len(body.Content); i += 2 {
		k, v := body.Content[i], body.Content[i+1]
		var err error
		switch k.Value {
		case "Material":
			it.Material, err = scalar(k, v)
		case "Type":
			it.Type, err = scalar(k, v)
		case "Display":
			it.Display, err = scalar(k, v)
		case "ItemModel":
			it.ItemModel, err = scalar(k, v)
		case "Model":
			it.Model, err = scalar(k, v)
		case "TooltipStyle":
			it.TooltipStyle, err = scalar(k, v)
		case "EquipLevel":
			var s string
			if s, err = scalar(k, v); err == nil {
				it.EquipLevel, err = strconv.Atoi(s)
			}
		case "Lore":
			it.Lore, err = sequence(k, v)
		case "Enchantments":
			it.Enchantments, err = sequence(k, v)
		case "Hide":
			it.Hide, err = sequence(k, v)
		case "Stats":
			it.Stats, err = parseStats(k, v)
		case "Attributes":
			it.Attributes, err = parseAttributes(v)
		case "Options":
			it.Options, err = parseOptions(v)
		default:
			if v.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: item %q: unexpected key %q: %w", k.Line, it.ID, k.Value, ErrMalformed)
			}
			var blk *Block
			blk, err = parseBlock(k.Value, v)
			it.AddExtension(blk)
		}
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", it.ID, err)
		}
	}
	return it, nil
}

func scalar(k, v *yaml.Node) (string, error) {
	if v.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: %q must be a scalar: %w", v.Line, k.Value, ErrMalformed)
	}
	return v.Value, nil
}

func sequence(k, v *yaml.Node) ([]string, error) {
	if v.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: %q must be a list: %w", v.Line, k.Value, ErrMalformed)
	}
	out := make([]string, 0, len(v.Content))
	for _, c := range v.Content {
		s, err := scalar(k, c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func parseStats(k, v *yaml.Node) ([]Stat, error) {
	lines, err := sequence(k, v)
	if err != nil {
		return nil, err
	}
	out := make([]Stat, 0, len(lines))
	for _, l := range lines {
		i := strings.LastIndexByte(l, ' ')
		if i <= 0 {
			return nil, fmt.Errorf("stat line %q has no value: %w", l, ErrMalformed)
		}
		n, ok := parseNumber(l[i+1:])
		if !ok {
			return nil, fmt.Errorf("stat line %q has a non-numeric value: %w", l, ErrMalformed)
		}
		out = append(out, Stat{Name: l[:i], Value: n})
	}
	return out, nil
}

func parseAttributes(v *yaml.Node) ([]AttributeGroup, error) {
	if v.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: Attributes must be a mapping: %w", v.Line, ErrMalformed)
	}
	var groups []AttributeGroup
	unslotted := -1
	for i := 0; i+1 < len(v.Content); i += 2 {
		k, val := v.Content[i], v.Content[i+1]
		if val.Kind == yaml.MappingNode {
			g := AttributeGroup{Slot: k.Value}
			for j := 0; j+1 < len(val.Content); j += 2 {
				a, err := parseAttribute(val.Content[j], val.Content[j+1])
				if err != nil {
					return nil, err
				}
				g.Attributes = append(g.Attributes, a)
			}
			groups = append(groups, g)
			continue
		}
		a, err := parseAttribute(k, val)
		if err != nil {
			return nil, err
		}
		if unslotted < 0 {
			unslotted = len(groups)
			groups = append(groups, AttributeGroup{Slot: mapping.Unslotted})
		}
		groups[unslotted].Attributes = append(groups[unslotted].Attributes, a)
	}
	return groups, nil
}

func parseAttribute(k, v *yaml.Node) (Attribute, error) {
	s, err := scalar(k, v)
	if err != nil {
		return Attribute{}, err
	}
	num, op, _ := strings.Cut(s, " ")
	n, ok := parseNumber(num)
	if !ok {
		return Attribute{}, fmt.Errorf("line %d: attribute %q has a non-numeric value %q: %w", v.Line, k.Value, s, ErrMalformed)
	}
	return Attribute{Name: k.Value, Value: n, Operation: op}, nil
}

func parseOptions(v *yaml.Node) ([]Entry, error) {
	if v.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: Options must be a mapping: %w", v.Line, ErrMalformed)
	}
	out := make([]Entry, 0, len(v.Content)/2)
	for i := 0; i+1 < len(v.Content); i += 2 {
		s, err := scalar(v.Content[i], v.Content[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: v.Content[i].Value, Value: s})
	}
	return out, nil
}

func parseBlock(name string, v *yaml.Node) (*Block, error) {
	blk := NewBlock(name)
	for i := 0; i+1 < len(v.Content); i += 2 {
		k, val := v.Content[i], v.Content[i+1]
		switch val.Kind {
		case yaml.MappingNode:
			child, err := parseBlock(k.Value, val)
			if err != nil {
				return nil, err
			}
			blk.SetBlock(child)
		case yaml.SequenceNode:
			items, err := sequence(k, val)
			if err != nil {
				return nil, err
			}
			blk.SetList(k.Value, items)
		default:
			s, err := scalar(k, val)
			if err != nil {
				return nil, err
			}
			blk.Set(k.Value, s)
		}
	}
	return blk, nil
}
