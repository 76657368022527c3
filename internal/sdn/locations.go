package sdn

import "strings"

// buildLocations flattens every Location in the first Locations block into an
// Address keyed by location ID. Each LocationPart's value is routed by a
// case-insensitive substring of its resolved part-type name; parts that match
// nothing are appended to the street address.
func buildLocations(root *element, refs refValues) map[string]Address {
	countries := refs["CountryValues"]
	partTypes := refs["LocPartTypeValues"]

	locations := make(map[string]Address)
	block := root.find("Locations")
	if block == nil {
		return locations
	}

	for _, loc := range block.all("Location") {
		id := loc.attr("ID")
		if id == "" {
			continue
		}
		var a Address
		for _, child := range loc.children {
			switch child.tag {
			case "LocationCountry":
				a.Country = countries[child.attr("CountryID")]
			case "LocationPart":
				partName := strings.ToLower(partTypes[child.attr("LocPartTypeID")])
				value := ""
				if pv := child.find("LocationPartValue"); pv != nil {
					value = pv.trimmed()
				}
				if value == "" {
					continue
				}
				switch {
				case strings.Contains(partName, "city"):
					a.City = value
				case strings.Contains(partName, "address"):
					a.Address = value
				case strings.Contains(partName, "state"), strings.Contains(partName, "province"):
					a.StateProvince = value
				case strings.Contains(partName, "postal"), strings.Contains(partName, "zip"):
					a.PostalCode = value
				case strings.Contains(partName, "region"):
					a.Region = value
				default:
					a.Address = strings.TrimLeft(a.Address+", "+value, ", ")
				}
			}
		}
		locations[id] = a
	}
	return locations
}
