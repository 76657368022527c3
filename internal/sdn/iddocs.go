package sdn

// buildIDDocs flattens every IDRegDocument in the first IDRegDocuments block
// into an IDDoc keyed by document ID. The document-level IDRegDocTypeID sets
// the initial type; child elements override it and the remaining fields.
func buildIDDocs(root *element, refs refValues) map[string]IDDoc {
	countries := refs["CountryValues"]
	docTypes := refs["IDRegDocTypeValues"]

	docs := make(map[string]IDDoc)
	block := root.find("IDRegDocuments")
	if block == nil {
		return docs
	}

	for _, doc := range block.all("IDRegDocument") {
		id := doc.attr("ID")
		if id == "" {
			continue
		}
		d := IDDoc{IDType: docTypes[doc.attr("IDRegDocTypeID")]}
		for _, child := range doc.children {
			switch child.tag {
			case "IDRegDocType":
				// Prefer the referenced type; fall back to the element text
				// when the reference is unknown.
				if t, ok := docTypes[child.attr("IDRegDocTypeID")]; ok {
					d.IDType = t
				} else {
					d.IDType = child.trimmed()
				}
			case "IDRegDocumentID":
				d.IDNumber = child.trimmed()
			case "IssuingCountry":
				d.Country = countries[child.attr("CountryID")]
			case "IDRegDocDateOfIssuance":
				d.IssueDate = parseDatePeriod(child)
			case "IDRegDocExpirationDate":
				d.ExpiryDate = parseDatePeriod(child)
			}
		}
		docs[id] = d
	}
	return docs
}
