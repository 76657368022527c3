package sdn

// Party is one flattened, query-ready record per DistinctParty in the SDN
// Advanced list. Repeated string fields are deduplicated in first-seen order;
// nullable sub-records are nil pointers.
type Party struct {
	SDNEntryID              int       `json:"sdn_entry_id"`
	SDNType                 string    `json:"sdn_type,omitempty"`
	Programs                []string  `json:"programs,omitempty"`
	LegalAuthorities        []string  `json:"legal_authorities,omitempty"`
	PrimaryName             *Name     `json:"primary_name,omitempty"`
	Aliases                 []Alias   `json:"aliases,omitempty"`
	Addresses               []Address `json:"addresses,omitempty"`
	IDDocuments             []IDDoc   `json:"id_documents,omitempty"`
	DatesOfBirth            []string  `json:"dates_of_birth,omitempty"`
	PlacesOfBirth           []string  `json:"places_of_birth,omitempty"`
	Nationalities           []string  `json:"nationalities,omitempty"`
	Citizenships            []string  `json:"citizenships,omitempty"`
	Title                   string    `json:"title,omitempty"`
	Gender                  string    `json:"gender,omitempty"`
	Remarks                 string    `json:"remarks,omitempty"`
	VesselInfo              *Vessel   `json:"vessel_info,omitempty"`
	AircraftInfo            *Aircraft `json:"aircraft_info,omitempty"`
	AdditionalSanctionsInfo string    `json:"additional_sanctions_info,omitempty"`
	PublicationDate         string    `json:"publication_date,omitempty"`
	IngestionTimestamp      string    `json:"ingestion_timestamp,omitempty"`
	SourceURL               string    `json:"source_url,omitempty"`
}

// Name is a documented name assembled from sorted name parts.
type Name struct {
	FullName  string     `json:"full_name,omitempty"`
	NameParts []NamePart `json:"name_parts,omitempty"`
}

// NamePart is a single typed fragment of a documented name.
type NamePart struct {
	PartType  string `json:"part_type,omitempty"`
	PartValue string `json:"part_value,omitempty"`
	Script    string `json:"script,omitempty"`
}

// Alias is any documented name that did not become the primary name.
type Alias struct {
	AliasType    string     `json:"alias_type,omitempty"`
	AliasQuality string     `json:"alias_quality,omitempty"`
	FullName     string     `json:"full_name,omitempty"`
	NameParts    []NamePart `json:"name_parts,omitempty"`
}

// Address is a flattened Location record.
type Address struct {
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	StateProvince string `json:"state_province,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country,omitempty"`
	Region        string `json:"region,omitempty"`
}

// IDDoc is a flattened IDRegDocument record. IsFraudulent is reserved: no
// current input sets it.
type IDDoc struct {
	IDType       string `json:"id_type,omitempty"`
	IDNumber     string `json:"id_number,omitempty"`
	Country      string `json:"country,omitempty"`
	IssueDate    string `json:"issue_date,omitempty"`
	ExpiryDate   string `json:"expiry_date,omitempty"`
	IsFraudulent bool   `json:"is_fraudulent"`
}

// Vessel holds vessel-specific feature values.
type Vessel struct {
	VesselType     string `json:"vessel_type,omitempty"`
	VesselFlag     string `json:"vessel_flag,omitempty"`
	VesselOwner    string `json:"vessel_owner,omitempty"`
	VesselTonnage  string `json:"vessel_tonnage,omitempty"`
	VesselGRT      string `json:"vessel_grt,omitempty"`
	VesselCallSign string `json:"vessel_call_sign,omitempty"`
	VesselMMSI     string `json:"vessel_mmsi,omitempty"`
	VesselIMO      string `json:"vessel_imo,omitempty"`
}

// Aircraft holds aircraft-specific feature values.
type Aircraft struct {
	AircraftType         string `json:"aircraft_type,omitempty"`
	AircraftManufacturer string `json:"aircraft_manufacturer,omitempty"`
	AircraftSerial       string `json:"aircraft_serial,omitempty"`
	AircraftTailNumber   string `json:"aircraft_tail_number,omitempty"`
	AircraftOperator     string `json:"aircraft_operator,omitempty"`
}

func (n *Name) empty() bool {
	return n.FullName == "" && len(n.NameParts) == 0
}

func (v *Vessel) empty() bool {
	return *v == Vessel{}
}

func (a *Aircraft) empty() bool {
	return *a == Aircraft{}
}

// collapseEmpty nils out nullable sub-records whose fields are all empty, so
// downstream consumers see null rather than an empty struct. Idempotent.
func (p *Party) collapseEmpty() {
	if p.PrimaryName != nil && p.PrimaryName.empty() {
		p.PrimaryName = nil
	}
	if p.VesselInfo != nil && p.VesselInfo.empty() {
		p.VesselInfo = nil
	}
	if p.AircraftInfo != nil && p.AircraftInfo.empty() {
		p.AircraftInfo = nil
	}
}

// appendUnique appends s when it is non-empty and not already present,
// preserving first-seen order.
func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
