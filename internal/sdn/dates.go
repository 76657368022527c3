package sdn

// parseDatePeriod decodes a DatePeriod into the most specific ISO date its
// first usable boundary supports: YYYY-MM-DD, YYYY-MM, or YYYY. Boundaries
// (Start then End, in document order) are consulted until one carries a
// non-empty Year; "" means no boundary did.
func parseDatePeriod(dp *element) string {
	for _, boundary := range dp.children {
		if boundary.tag != "Start" && boundary.tag != "End" {
			continue
		}
		from := boundary.find("From")
		if from == nil {
			continue
		}
		year := from.findText("Year")
		if year == "" {
			continue
		}
		month := zeroPad2(from.findText("Month"))
		day := zeroPad2(from.findText("Day"))
		switch {
		case month != "" && day != "":
			return year + "-" + month + "-" + day
		case month != "":
			return year + "-" + month
		default:
			return year
		}
	}
	return ""
}

// zeroPad2 left-pads single-digit month/day values.
func zeroPad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
