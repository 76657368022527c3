package sdn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDatePeriod(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			name: "full date from start boundary",
			xml: `<DatePeriod>
				<Start><From><Year>1957</Year><Month>7</Month><Day>30</Day></From></Start>
				<End><From><Year>1958</Year></From></End>
			</DatePeriod>`,
			want: "1957-07-30",
		},
		{
			name: "year only",
			xml:  `<DatePeriod><Start><From><Year>1960</Year></From></Start></DatePeriod>`,
			want: "1960",
		},
		{
			name: "year and month",
			xml:  `<DatePeriod><Start><From><Year>1984</Year><Month>11</Month></From></Start></DatePeriod>`,
			want: "1984-11",
		},
		{
			name: "single digit month and day are padded",
			xml:  `<DatePeriod><Start><From><Year>2003</Year><Month>5</Month><Day>9</Day></From></Start></DatePeriod>`,
			want: "2003-05-09",
		},
		{
			name: "day without month falls back to year",
			xml:  `<DatePeriod><Start><From><Year>1957</Year><Day>30</Day></From></Start></DatePeriod>`,
			want: "1957",
		},
		{
			name: "no year yields empty",
			xml:  `<DatePeriod><Start><From><Month>7</Month><Day>30</Day></From></Start></DatePeriod>`,
			want: "",
		},
		{
			name: "empty period yields empty",
			xml:  `<DatePeriod></DatePeriod>`,
			want: "",
		},
		{
			name: "yearless start falls through to end boundary",
			xml: `<DatePeriod>
				<Start><From><Year></Year></From></Start>
				<End><From><Year>1999</Year><Month>2</Month><Day>3</Day></From></End>
			</DatePeriod>`,
			want: "1999-02-03",
		},
		{
			name: "boundary without From is skipped",
			xml:  `<DatePeriod><Start/><End><From><Year>2001</Year></From></End></DatePeriod>`,
			want: "2001",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDatePeriod(mustDecode(t, tt.xml)))
		})
	}
}
