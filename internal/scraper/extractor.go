// internal/scraper/extractor.go
package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cinescrape/internal/config"
	"cinescrape/internal/pipeline"
)

// Extract applies a field's strategies in declaration order against the
// document and returns the first non-empty normalized value. Strategies
// are never merged; once one yields a value the rest are not attempted.
// All strategies empty means no value, not an error.
func Extract(ctx context.Context, doc *Document, spec config.FieldConfig) (interface{}, bool, error) {
	for _, strategy := range spec.Strategies {
		raw, err := locate(doc, spec, strategy)
		if err != nil {
			return nil, false, fmt.Errorf("field %q strategy %s: %w", spec.Name, strategy.Kind, err)
		}
		if len(raw) == 0 {
			continue
		}

		value, ok, err := normalize(ctx, spec, raw)
		if err != nil {
			return nil, false, fmt.Errorf("field %q: %w", spec.Name, err)
		}
		if ok {
			return value, true, nil
		}
	}
	return nil, false, nil
}

// locate finds the raw candidate values for one strategy. A nil/empty
// result means the strategy did not match.
func locate(doc *Document, spec config.FieldConfig, strategy config.StrategyConfig) ([]string, error) {
	switch strategy.Kind {
	case config.StrategyCSS:
		if spec.Type == config.FieldList {
			var items []string
			doc.Select(strategy.Selector).Each(func(_ int, s *goquery.Selection) {
				if text := strings.TrimSpace(s.Text()); text != "" {
					items = append(items, text)
				}
			})
			return items, nil
		}
		sel := doc.SelectFirst(strategy.Selector)
		if sel.Length() == 0 {
			return nil, nil
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return nil, nil
		}
		return []string{text}, nil

	case config.StrategyAttr:
		sel := doc.SelectFirst(strategy.Selector)
		if sel.Length() == 0 {
			return nil, nil
		}
		attr, exists := sel.Attr(strategy.Attribute)
		if !exists || strings.TrimSpace(attr) == "" {
			return nil, nil
		}
		return []string{strings.TrimSpace(attr)}, nil

	case config.StrategyRegex:
		re, err := regexp.Compile(strategy.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		if spec.Type == config.FieldList {
			var items []string
			for _, m := range re.FindAllStringSubmatch(doc.Text(), -1) {
				items = append(items, submatchValue(m))
			}
			return items, nil
		}
		m := re.FindStringSubmatch(doc.Text())
		if m == nil {
			return nil, nil
		}
		v := submatchValue(m)
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil

	default:
		return nil, fmt.Errorf("unknown strategy kind %q", strategy.Kind)
	}
}

func submatchValue(m []string) string {
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}

// normalize runs the field's transform chain and coerces the result to
// the field's declared type. ok is false when normalization left nothing.
func normalize(ctx context.Context, spec config.FieldConfig, raw []string) (interface{}, bool, error) {
	transforms := pipeline.TransformList(spec.Transform)

	if spec.Type == config.FieldList {
		var out []string
		for _, item := range raw {
			v, err := transforms.Apply(ctx, item)
			if err != nil {
				return nil, false, err
			}
			if v != "" {
				out = append(out, v)
			}
		}
		if len(out) == 0 {
			return nil, false, nil
		}
		return out, true, nil
	}

	value, err := transforms.Apply(ctx, raw[0])
	if err != nil {
		return nil, false, err
	}
	if value == "" {
		return nil, false, nil
	}

	return coerce(spec.Type, value)
}

// coerce converts a normalized string into the field's typed value.
// Numeric types pull the first run matching the expected shape out of
// surrounding text ("Rated 7.4/10" -> 7.4).
func coerce(fieldType, value string) (interface{}, bool, error) {
	switch fieldType {
	case config.FieldText, config.FieldCurrency:
		// Currency amounts stay raw here; conversion needs the record's
		// year and happens in the aggregation pass.
		return value, true, nil

	case config.FieldInt:
		n, ok := pipeline.FirstNumber(value)
		if !ok {
			return nil, false, nil
		}
		return int(n), true, nil

	case config.FieldFloat:
		n, ok := pipeline.FirstNumber(value)
		if !ok {
			return nil, false, nil
		}
		return n, true, nil

	case config.FieldYear:
		y, ok := pipeline.FirstYear(value)
		if !ok {
			return nil, false, nil
		}
		return y, true, nil

	default:
		return nil, false, fmt.Errorf("unsupported field type: %s", fieldType)
	}
}
