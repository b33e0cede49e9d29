package i

import "context"

// Pose is the world placement of the robot: metres on the floor plane and the
// heading around the vertical axis in radians (0 faces +X).
type Pose struct {
	X   float64
	Y   float64
	Yaw float64
}

// Reading is one sample of the forward distance sensor.
// Detected is false when nothing is within sensor range.
type Reading struct {
	Detected bool
	Distance float64
}

// Robot is the actuator/sensor capability the navigator drives.
// A returned error means the call itself failed; it never means "no detection".
type Robot interface {
	// SetPose places the robot. Calling it twice with the same pose is a no-op.
	SetPose(ctx context.Context, pose Pose) error

	// ReadDistance samples the distance to the nearest obstruction along the
	// current heading.
	ReadDistance(ctx context.Context) (Reading, error)

	// Step commits the last pose change so the next reading reflects it, then
	// waits for the robot to settle. A context error means the pose was
	// committed but the wait was cut short.
	Step(ctx context.Context) error
}
