package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidCatalog marks a structurally malformed profile definition.
// Structural problems fail fast at load time; the resolution engine
// assumes a validated catalog.
var ErrInvalidCatalog = errors.New("invalid profile catalog")

// catalogSchema validates the shape of a per-receiver definition file
// before decoding. Cross-field rules (default membership, min <= max,
// reserved ids) are checked after decoding.
const catalogSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["profiles"],
    "properties": {
      "profiles": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id", "name", "description"],
          "properties": {
            "id": {"type": "integer"},
            "name": {"type": "object", "additionalProperties": {"type": "string"}},
            "description": {"type": "object", "additionalProperties": {"type": "string"}},
            "params": {
              "type": "object",
              "additionalProperties": {
                "type": "object",
                "required": ["constraint_type"],
                "properties": {
                  "constraint_type": {"enum": ["fixed", "list", "range"]},
                  "value": {"type": "number"},
                  "values": {"type": "array", "items": {"type": "number"}},
                  "default": {"type": "number"},
                  "min_value": {"type": "number"},
                  "max_value": {"type": "number"}
                }
              }
            }
          }
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("catalog.schema.json", catalogSchema)

// rawConstraint is the wire form of a parameter constraint.
type rawConstraint struct {
	ConstraintType string    `json:"constraint_type"`
	Value          *float64  `json:"value"`
	Values         []float64 `json:"values"`
	Default        *float64  `json:"default"`
	MinValue       *float64  `json:"min_value"`
	MaxValue       *float64  `json:"max_value"`
}

// rawProfile is the wire form of a profile definition.
type rawProfile struct {
	ID          int                      `json:"id"`
	Name        map[string]string        `json:"name"`
	Description map[string]string        `json:"description"`
	Params      map[string]rawConstraint `json:"params"`
}

// rawProfileSet holds all profiles for one sender channel type.
type rawProfileSet struct {
	Profiles []rawProfile `json:"profiles"`
}

// LoadCatalogDir loads every "<RECEIVER_TYPE>.json" file in a directory
// into one immutable catalog. Each file maps sender channel types to
// profile lists; list order is preserved as the matching priority.
func LoadCatalogDir(dir string) (*Catalog, error) {
	names, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog directory: %w", err)
	}

	sets := make(map[ChannelPair][]Def)
	for _, entry := range names {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		receiverType := strings.TrimSuffix(entry.Name(), ".json")
		path := filepath.Join(dir, entry.Name())
		if err := loadReceiverFile(path, receiverType, sets); err != nil {
			return nil, err
		}
	}
	return NewCatalog(sets)
}

// loadReceiverFile parses and validates one per-receiver definition file.
func loadReceiverFile(path, receiverType string, sets map[ChannelPair][]Def) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, path, err)
	}
	if err := compiledSchema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, path, err)
	}

	var raw map[string]rawProfileSet
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, path, err)
	}

	for senderType, set := range raw {
		defs := make([]Def, 0, len(set.Profiles))
		for _, rp := range set.Profiles {
			def, err := buildDef(rp)
			if err != nil {
				return fmt.Errorf("%s (%s/%s): %w", path, senderType, receiverType, err)
			}
			defs = append(defs, def)
		}
		sets[ChannelPair{SenderChannelType: senderType, ReceiverChannelType: receiverType}] = defs
	}
	return nil
}

// buildDef converts a wire profile into a Def, enforcing the cross-field
// constraint rules.
func buildDef(rp rawProfile) (Def, error) {
	params := make(map[string]Constraint, len(rp.Params))
	for paramID, rc := range rp.Params {
		c, err := buildConstraint(rc)
		if err != nil {
			return Def{}, fmt.Errorf("%w: profile %d parameter %s: %v", ErrInvalidCatalog, rp.ID, paramID, err)
		}
		params[paramID] = c
	}
	return Def{
		ID:          rp.ID,
		Name:        rp.Name,
		Description: rp.Description,
		Params:      params,
	}, nil
}

func buildConstraint(rc rawConstraint) (Constraint, error) {
	switch rc.ConstraintType {
	case "fixed":
		if rc.Value == nil {
			return nil, errors.New("fixed constraint requires a value")
		}
		return Fixed{Value: *rc.Value}, nil
	case "list":
		if len(rc.Values) == 0 {
			return nil, errors.New("list constraint requires values")
		}
		if rc.Default == nil {
			return nil, errors.New("list constraint requires a default")
		}
		member := false
		for _, v := range rc.Values {
			if v == *rc.Default {
				member = true
				break
			}
		}
		if !member {
			return nil, fmt.Errorf("default %v not in values", *rc.Default)
		}
		return List{Values: append([]float64(nil), rc.Values...), Default: *rc.Default}, nil
	case "range":
		if rc.MinValue == nil || rc.MaxValue == nil {
			return nil, errors.New("range constraint requires min_value and max_value")
		}
		if *rc.MinValue > *rc.MaxValue {
			return nil, fmt.Errorf("min %v greater than max %v", *rc.MinValue, *rc.MaxValue)
		}
		if rc.Default == nil {
			return nil, errors.New("range constraint requires a default")
		}
		if *rc.Default < *rc.MinValue || *rc.Default > *rc.MaxValue {
			return nil, fmt.Errorf("default %v outside range [%v, %v]", *rc.Default, *rc.MinValue, *rc.MaxValue)
		}
		return Range{Min: *rc.MinValue, Max: *rc.MaxValue, Default: *rc.Default}, nil
	}
	return nil, fmt.Errorf("unknown constraint type %q", rc.ConstraintType)
}
