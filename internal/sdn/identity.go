package sdn

import (
	"sort"
	"strings"
)

// namePartOrder ranks lowercased name-part types for full-name assembly:
// surnames and entity/vessel/aircraft names lead, then first, middle,
// patronymic, matronymic. Anything else sorts last (99), keeping its
// document position among equals.
var namePartOrder = map[string]int{
	"last name":     0,
	"last":          0,
	"entity name":   0,
	"vessel name":   0,
	"aircraft name": 0,
	"first name":    1,
	"first":         1,
	"middle name":   2,
	"middle":        2,
	"patronymic":    3,
	"matronymic":    4,
}

func namePartSortKey(partType string) int {
	if k, ok := namePartOrder[strings.ToLower(partType)]; ok {
		return k
	}
	return 99
}

// boolAttr reports whether an attribute is the string "true", ignoring case
// and surrounding whitespace.
func boolAttr(e *element, name string) bool {
	return strings.EqualFold(strings.TrimSpace(e.attr(name)), "true")
}

// parseIdentity folds one Identity element into the record. Every
// DocumentedName yields one name: the first one on a Primary alias with a
// non-empty assembled full name becomes the record's primary name, all others
// become aliases. Names whose parts are all empty are dropped.
func parseIdentity(identity *element, refs refValues, rec *Party) {
	aliasTypes := refs["AliasTypeValues"]
	scripts := refs["ScriptValues"]
	namePartTypes := refs["NamePartTypeValues"]

	// Name-part groups are scoped to the identity: group ID → resolved
	// part-type name, with a "part_<id>" placeholder for unknown type IDs.
	groups := make(map[string]string)
	for _, npgs := range identity.all("NamePartGroups") {
		for _, master := range npgs.children {
			for _, group := range master.children {
				if group.tag != "NamePartGroup" {
					continue
				}
				id := group.attr("ID")
				typeID := group.attr("NamePartTypeID")
				if id == "" || typeID == "" {
					continue
				}
				name, ok := namePartTypes[typeID]
				if !ok {
					name = "part_" + typeID
				}
				groups[id] = name
			}
		}
	}

	for _, alias := range identity.all("Alias") {
		aliasType, ok := aliasTypes[alias.attr("AliasTypeID")]
		if !ok {
			aliasType = "a.k.a."
		}
		isPrimary := boolAttr(alias, "Primary")
		quality := "strong"
		if boolAttr(alias, "LowQuality") {
			quality = "weak"
		}

		for _, docName := range alias.all("DocumentedName") {
			type rankedPart struct {
				key  int
				part NamePart
			}
			var parts []rankedPart
			for _, dnp := range docName.all("DocumentedNamePart") {
				for _, npv := range dnp.all("NamePartValue") {
					value := npv.trimmed()
					if value == "" {
						continue
					}
					partType, ok := groups[npv.attr("NamePartGroupID")]
					if !ok {
						partType = "Name"
					}
					parts = append(parts, rankedPart{
						key: namePartSortKey(partType),
						part: NamePart{
							PartType:  partType,
							PartValue: value,
							Script:    scripts[npv.attr("ScriptID")],
						},
					})
				}
			}

			// Stable: parts with equal rank keep document order.
			sort.SliceStable(parts, func(i, j int) bool { return parts[i].key < parts[j].key })

			nameParts := make([]NamePart, 0, len(parts))
			values := make([]string, 0, len(parts))
			for _, p := range parts {
				nameParts = append(nameParts, p.part)
				values = append(values, p.part.PartValue)
			}
			fullName := strings.Join(values, " ")
			if fullName == "" {
				continue
			}

			if isPrimary && rec.PrimaryName == nil {
				rec.PrimaryName = &Name{FullName: fullName, NameParts: nameParts}
			} else {
				rec.Aliases = append(rec.Aliases, Alias{
					AliasType:    aliasType,
					AliasQuality: quality,
					FullName:     fullName,
					NameParts:    nameParts,
				})
			}
		}
	}
}
