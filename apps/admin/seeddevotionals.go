package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/imani/core/devotional"
)

// seedDevotionals loads the devotional catalog from a JSON file; positions
// already present are skipped.
func (cli *commandLine) seedDevotionals(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading seed file")
	}

	var devs []devotional.NewDevotional
	if err = json.Unmarshal(data, &devs); err != nil {
		return errors.Wrap(err, "parsing seed file")
	}

	ctx := context.Background()
	var created, skipped int
	for _, nd := range devs {
		if _, err = cli.devSvc.Create(ctx, nd); err != nil {
			if errors.Cause(err) == devotional.ErrExists {
				skipped++
				continue
			}
			return errors.Wrapf(err, "creating devotional (%d,%d)", nd.Week, nd.Day)
		}
		created++
	}
	fmt.Printf("seeded %d devotionals (%d already present)\n", created, skipped)
	return nil
}
