package llm

import "maps"

// MergeFieldMaps starts from enhancement and overlays primary, so values read
// from the document always win over values found by web search.
func MergeFieldMaps(primary, enhancement FieldMap) FieldMap {
	out := make(FieldMap, len(primary)+len(enhancement))
	maps.Copy(out, enhancement)
	maps.Copy(out, primary)
	return out
}

// AddedKeys returns the sorted keys of merged that base does not have.
func AddedKeys(base, merged FieldMap) []string {
	var added []string
	for _, k := range merged.Keys() {
		if _, ok := base[k]; !ok {
			added = append(added, k)
		}
	}
	return added
}
