// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package address

import (
	"fmt"
	"strings"
	"testing"

	"github.com/wneessen/motoguide/internal/geocode"
)

var testAddress = Address{
	Street:             "High Street",
	Town:               "Lydney",
	County:             "Gloucestershire",
	AdministrativeArea: "England",
}

func TestAddress_Format(t *testing.T) {
	t.Run("all 16 inclusion combinations", func(t *testing.T) {
		components := []string{testAddress.Street, testAddress.Town, testAddress.County, testAddress.AdministrativeArea}
		for mask := 0; mask < 16; mask++ {
			inc := Inclusion{
				Street:             mask&1 != 0,
				Town:               mask&2 != 0,
				County:             mask&4 != 0,
				AdministrativeArea: mask&8 != 0,
			}
			var want []string
			for i, c := range components {
				if mask&(1<<i) != 0 {
					want = append(want, c)
				}
			}
			t.Run(fmt.Sprintf("%+v", inc), func(t *testing.T) {
				if got := testAddress.Format(inc); got != strings.Join(want, ", ") {
					t.Errorf("expected %q, got %q", strings.Join(want, ", "), got)
				}
			})
		}
	})
	t.Run("no inclusion yields an empty string", func(t *testing.T) {
		if got := testAddress.Format(Inclusion{}); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
	t.Run("empty components are skipped", func(t *testing.T) {
		addr := Address{Street: "", Town: "Lydney", County: "", AdministrativeArea: "England"}
		if got := addr.Format(All); got != "Lydney, England" {
			t.Errorf("expected %q, got %q", "Lydney, England", got)
		}
	})
	t.Run("unresolved components are spoken as N/A", func(t *testing.T) {
		addr := FromPlacemark(geocode.Placemark{Locality: "Lydney"})
		if got := addr.Format(Inclusion{Street: true, Town: true}); got != "N/A, Lydney" {
			t.Errorf("expected %q, got %q", "N/A, Lydney", got)
		}
	})
}

func TestAddress_String(t *testing.T) {
	want := "High Street, Lydney, Gloucestershire, England"
	if testAddress.String() != want {
		t.Errorf("expected %q, got %q", want, testAddress.String())
	}
}

func TestAddress_JSON(t *testing.T) {
	want := `{
  "street": "High Street",
  "town": "Lydney",
  "county": "Gloucestershire",
  "administrativeArea": "England"
}`
	if got := testAddress.JSON(); got != want {
		t.Errorf("expected JSON to be %s, got %s", want, got)
	}
}

func TestFromPlacemark(t *testing.T) {
	tests := []struct {
		name      string
		placemark geocode.Placemark
		want      Address
	}{
		{
			"full placemark",
			geocode.Placemark{
				Found: true, Thoroughfare: "High Street", Locality: "Lydney",
				SubAdministrativeArea: "Gloucestershire", AdministrativeArea: "England",
			},
			testAddress,
		},
		{
			"empty placemark",
			geocode.Placemark{Found: true},
			Address{Street: NotAvailable, Town: NotAvailable, County: NotAvailable, AdministrativeArea: NotAvailable},
		},
		{
			"country stands in for the administrative area",
			geocode.Placemark{Found: true, Locality: "Monaco", Country: "Monaco"},
			Address{Street: NotAvailable, Town: "Monaco", County: NotAvailable, AdministrativeArea: "Monaco"},
		},
		{
			"whitespace only fields",
			geocode.Placemark{Found: true, Thoroughfare: "  ", Locality: "Otley"},
			Address{Street: NotAvailable, Town: "Otley", County: NotAvailable, AdministrativeArea: NotAvailable},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FromPlacemark(tc.placemark); got != tc.want {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestAddress_equality(t *testing.T) {
	other := testAddress
	if other != testAddress {
		t.Error("expected copies to be equal")
	}
	other.Street = "Newerne Street"
	if other == testAddress {
		t.Error("expected addresses with different streets to differ")
	}
}
