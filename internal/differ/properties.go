package differ

import (
	"encoding/json"
	"reflect"
	"sort"
)

// PropertyChanges maps a field name to its change record: a FieldChange for
// scalar and array values, or a map[string]FieldChange of changed sub-keys
// for object-valued fields. The model's nested groups (padding, border,
// button sub-record) are exactly one level deep, so the diff deliberately
// stops there; downstream consumers depend on this shape and a general
// recursive diff would break them.
type PropertyChanges map[string]any

// diffProperties compares two flattened objects and returns the changed
// fields, or nil when the objects are deep-equal.
func diffProperties(oldObj, newObj map[string]any) PropertyChanges {
	if reflect.DeepEqual(oldObj, newObj) {
		return nil
	}

	changes := PropertyChanges{}
	for _, key := range unionKeys(oldObj, newObj) {
		oldVal := oldObj[key]
		newVal := newObj[key]

		oldMap, oldIsMap := oldVal.(map[string]any)
		newMap, newIsMap := newVal.(map[string]any)
		if oldIsMap && newIsMap {
			nested := map[string]FieldChange{}
			for _, sub := range unionKeys(oldMap, newMap) {
				if !reflect.DeepEqual(oldMap[sub], newMap[sub]) {
					nested[sub] = FieldChange{OldValue: oldMap[sub], NewValue: newMap[sub]}
				}
			}
			if len(nested) > 0 {
				changes[key] = nested
			}
			continue
		}

		if !reflect.DeepEqual(oldVal, newVal) {
			changes[key] = FieldChange{OldValue: oldVal, NewValue: newVal}
		}
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}

// toMap flattens a model value into a generic map via its JSON form, which
// is the same representation the diff output is consumed in. A nil input
// yields an empty map.
func toMap(v any) map[string]any {
	if v == nil {
		return map[string]any{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]bool, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range b {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
