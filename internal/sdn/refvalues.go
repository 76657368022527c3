package sdn

// refValues holds every ReferenceValueSets enumeration: set name → item ID →
// display text. Unknown sets and unknown IDs both resolve to "" through the
// usual nil-map indexing, which is exactly the unknown-reference contract.
type refValues map[string]map[string]string

// buildRefValues parses the first ReferenceValueSets block. Two sets need
// special handling:
//
//   - LegalBasisValues items carry their display text in a LegalBasisShortRef
//     child, not in the element text.
//   - PartySubTypeValues items whose text is empty or the literal "Unknown"
//     borrow the text of their PartyTypeID from PartyTypeValues. The upstream
//     list uses "Unknown" subtypes for plain Individual/Entity parties.
func buildRefValues(root *element) refValues {
	refs := make(refValues)
	block := root.find("ReferenceValueSets")
	if block == nil {
		return refs
	}

	type rawSubType struct {
		text        string
		partyTypeID string
	}
	rawSubTypes := make(map[string]rawSubType)

	for _, set := range block.children {
		mapping := make(map[string]string)
		switch set.tag {
		case "LegalBasisValues":
			for _, item := range set.children {
				id := item.attr("ID")
				if id == "" {
					continue
				}
				mapping[id] = item.findText("LegalBasisShortRef")
			}
		case "PartySubTypeValues":
			for _, item := range set.children {
				id := item.attr("ID")
				if id == "" {
					continue
				}
				rawSubTypes[id] = rawSubType{
					text:        item.trimmed(),
					partyTypeID: item.attr("PartyTypeID"),
				}
				mapping[id] = item.trimmed()
			}
		default:
			for _, item := range set.children {
				id := item.attr("ID")
				if id == "" {
					continue
				}
				mapping[id] = item.trimmed()
			}
		}
		refs[set.tag] = mapping
	}

	// Cross-reference party subtypes once both sets exist.
	if partyTypes, ok := refs["PartyTypeValues"]; ok && len(rawSubTypes) > 0 {
		resolved := make(map[string]string, len(rawSubTypes))
		for id, st := range rawSubTypes {
			text := st.text
			if text == "" || text == "Unknown" {
				if pt, ok := partyTypes[st.partyTypeID]; ok {
					text = pt
				}
			}
			resolved[id] = text
		}
		refs["PartySubTypeValues"] = resolved
	}

	return refs
}
