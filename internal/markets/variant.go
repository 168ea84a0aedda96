package markets

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Variant selects which demo is deployed
type Variant string

const (
	VariantMarkets  Variant = "markets"
	VariantDualTool Variant = "dual-tool"
)

// Variants lists the accepted values in help order
var Variants = []Variant{VariantMarkets, VariantDualTool}

var _ pflag.Value = (*Variant)(nil)

func (v *Variant) String() string {
	if *v == "" {
		return string(VariantMarkets)
	}
	return string(*v)
}

// Set implements pflag.Value so bad values fail at parse time
func (v *Variant) Set(s string) error {
	for _, known := range Variants {
		if strings.EqualFold(s, string(known)) {
			*v = known
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", joinVariants())
}

func (v *Variant) Type() string {
	return "variant"
}

// DefaultWarehouse is the warehouse the search services run on
func (v Variant) DefaultWarehouse() string {
	if v == VariantDualTool {
		return "DEMO_WH"
	}
	return "COMPUTE_WH"
}

func joinVariants() string {
	names := make([]string, len(Variants))
	for i, v := range Variants {
		names[i] = string(v)
	}
	return strings.Join(names, "|")
}
