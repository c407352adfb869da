package broadcaster

import (
	"errors"
	"fmt"
	"sort"
)

// makeError joins the per node errors in node name order so the first
// error the caller unwraps is stable.
func makeError(errs map[string]error) error {
	if len(errs) == 0 {
		return nil
	}
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	joined := []error{}
	for _, name := range names {
		joined = append(joined, fmt.Errorf("%s: %w", name, errs[name]))
	}
	return errors.Join(joined...)
}
