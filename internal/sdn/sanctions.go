package sdn

import "strings"

// sanctionsEntry accumulates program names, legal authorities, and remarks
// for one profile. Several SanctionsEntry elements may share a ProfileID;
// their contributions merge additively with dedup.
type sanctionsEntry struct {
	programs         []string
	legalAuthorities []string
	remarks          string
}

// buildSanctions indexes the first SanctionsEntries block by the ProfileID
// attribute of each SanctionsEntry. Program names live in the Comment
// children of SanctionsMeasure elements; legal authorities are the
// LegalBasisID attribute on EntryEvent elements resolved through
// LegalBasisValues.
func buildSanctions(root *element, refs refValues) map[string]*sanctionsEntry {
	legalBasis := refs["LegalBasisValues"]

	entries := make(map[string]*sanctionsEntry)
	block := root.find("SanctionsEntries")
	if block == nil {
		return entries
	}

	for _, entry := range block.all("SanctionsEntry") {
		profileID := strings.TrimSpace(entry.attr("ProfileID"))
		if profileID == "" {
			continue
		}

		var programs, authorities []string
		remarks := ""
		for _, child := range entry.children {
			switch child.tag {
			case "SanctionsMeasure":
				for _, c := range child.all("Comment") {
					programs = appendUnique(programs, c.trimmed())
				}
			case "EntryEvent":
				if id := child.attr("LegalBasisID"); id != "" {
					if la, ok := legalBasis[id]; ok {
						authorities = appendUnique(authorities, la)
					}
				}
			case "Remarks":
				remarks = child.trimmed()
			}
		}

		se := entries[profileID]
		if se == nil {
			se = &sanctionsEntry{}
			entries[profileID] = se
		}
		for _, p := range programs {
			se.programs = appendUnique(se.programs, p)
		}
		for _, la := range authorities {
			se.legalAuthorities = appendUnique(se.legalAuthorities, la)
		}
		if remarks != "" {
			se.remarks = remarks
		}
	}
	return entries
}
