package cmd

import (
	"context"
	"fmt"

	"github.com/omniscale/osmdoc/config"
	"github.com/omniscale/osmdoc/log"
	"github.com/omniscale/osmdoc/validate"
)

// Validate prints all schema violations of the input. Violations are not
// an error.
func Validate(ctx context.Context, opts *config.Options) error {
	v, err := validate.Load(opts.Schema)
	if err != nil {
		return err
	}
	defer log.Step("Validating " + opts.Input)()
	msgs, err := v.ValidateFile(opts.Input)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		fmt.Println(m)
	}
	if len(msgs) > 0 {
		log.Printf("[warn] %s has %d schema violations", opts.Input, len(msgs))
	} else {
		log.Printf("[info] %s is valid", opts.Input)
	}
	return nil
}
