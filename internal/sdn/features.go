package sdn

import "strings"

// featureField binds a feature-name substring to a record field setter.
// These live in ordered slices, not maps: the first matching key wins, and
// the more specific keys must be tested first ("aircraft manufacturer's
// serial number" before "aircraft manufacturer").
type featureField[T any] struct {
	key string
	set func(*T, string)
}

var vesselFeatures = []featureField[Vessel]{
	{"vessel call sign", func(v *Vessel, s string) { v.VesselCallSign = s }},
	{"vessel type", func(v *Vessel, s string) { v.VesselType = s }},
	{"vessel tonnage", func(v *Vessel, s string) { v.VesselTonnage = s }},
	{"gross registered tonnage", func(v *Vessel, s string) { v.VesselGRT = s }},
	{"vessel flag", func(v *Vessel, s string) { v.VesselFlag = s }},
	{"vessel owner", func(v *Vessel, s string) { v.VesselOwner = s }},
	{"mmsi", func(v *Vessel, s string) { v.VesselMMSI = s }},
	{"imo", func(v *Vessel, s string) { v.VesselIMO = s }},
}

var aircraftFeatures = []featureField[Aircraft]{
	{"aircraft construction number", func(a *Aircraft, s string) { a.AircraftSerial = s }},
	{"aircraft manufacturer's serial number", func(a *Aircraft, s string) { a.AircraftSerial = s }},
	{"aircraft model", func(a *Aircraft, s string) { a.AircraftType = s }},
	{"aircraft operator", func(a *Aircraft, s string) { a.AircraftOperator = s }},
	{"aircraft tail number", func(a *Aircraft, s string) { a.AircraftTailNumber = s }},
	{"aircraft type", func(a *Aircraft, s string) { a.AircraftType = s }},
	{"aircraft manufacturer", func(a *Aircraft, s string) { a.AircraftManufacturer = s }},
}

// parseFeatures folds every Feature/FeatureVersion under a profile into the
// record: birth dates, nationalities and citizenships, referenced locations
// and ID documents, gender/title comments, additional-sanctions comments, and
// the vessel/aircraft detail fields.
func parseFeatures(profile *element, refs refValues, locations map[string]Address, idDocs map[string]IDDoc, rec *Party) {
	featureTypes := refs["FeatureTypeValues"]
	countries := refs["CountryValues"]

	var (
		vessel     *Vessel
		aircraft   *Aircraft
		additional []string
	)

	for _, feature := range profile.all("Feature") {
		ftName := strings.ToLower(featureTypes[feature.attr("FeatureTypeID")])

		for _, fv := range feature.all("FeatureVersion") {
			comment := ""
			for _, child := range fv.children {
				switch child.tag {
				case "Comment":
					comment = child.trimmed()
				case "DatePeriod":
					if date := parseDatePeriod(child); date != "" &&
						strings.Contains(ftName, "birth") && strings.Contains(ftName, "date") {
						rec.DatesOfBirth = appendUnique(rec.DatesOfBirth, date)
					}
				case "VersionDetail":
					if countryID := child.attr("CountryID"); countryID != "" {
						country := countries[countryID]
						if strings.Contains(ftName, "national") {
							rec.Nationalities = appendUnique(rec.Nationalities, country)
						} else if strings.Contains(ftName, "citizen") {
							rec.Citizenships = appendUnique(rec.Citizenships, country)
						}
					}
					for _, detail := range child.children {
						switch detail.tag {
						case "LocationID":
							if loc, ok := locations[detail.trimmed()]; ok {
								applyLocation(loc, ftName, rec)
							}
						case "IDRegDocumentReference":
							if doc, ok := idDocs[detail.attr("DocumentID")]; ok {
								rec.IDDocuments = append(rec.IDDocuments, doc)
							}
						}
					}
				case "VersionLocation":
					if loc, ok := locations[child.attr("LocationID")]; ok {
						applyLocation(loc, ftName, rec)
					}
				}
			}

			switch {
			case strings.Contains(ftName, "gender") && comment != "":
				rec.Gender = comment
			case strings.Contains(ftName, "title") && comment != "":
				rec.Title = comment
			case strings.Contains(ftName, "additional sanctions") && comment != "":
				additional = append(additional, comment)
			}

			for _, vf := range vesselFeatures {
				if strings.Contains(ftName, vf.key) {
					if vessel == nil {
						vessel = &Vessel{}
					}
					vf.set(vessel, comment)
					break
				}
			}
			for _, af := range aircraftFeatures {
				if strings.Contains(ftName, af.key) {
					if aircraft == nil {
						aircraft = &Aircraft{}
					}
					af.set(aircraft, comment)
					break
				}
			}
		}
	}

	if vessel != nil {
		rec.VesselInfo = vessel
	}
	if aircraft != nil {
		rec.AircraftInfo = aircraft
	}
	if len(additional) > 0 {
		rec.AdditionalSanctionsInfo = strings.Join(additional, "; ")
	}
}

// applyLocation routes a resolved location by feature name: birth-place
// features contribute a "city, state, country" string (empty parts elided),
// anything else contributes a full Address. All-empty locations are dropped.
func applyLocation(loc Address, ftName string, rec *Party) {
	if strings.Contains(ftName, "birth") && strings.Contains(ftName, "place") {
		parts := make([]string, 0, 3)
		for _, s := range []string{loc.City, loc.StateProvince, loc.Country} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		rec.PlacesOfBirth = appendUnique(rec.PlacesOfBirth, strings.Join(parts, ", "))
		return
	}
	if loc != (Address{}) {
		rec.Addresses = append(rec.Addresses, loc)
	}
}
