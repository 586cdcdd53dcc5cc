package recommend

import "errors"

// ErrInvalidTargetProfile is returned when a target cannot be scored against:
// ratios that do not sum to 1, negative ratios, or a negative calorie target.
var ErrInvalidTargetProfile = errors.New("invalid target profile")
