package gesture

import (
	"math"

	"github.com/ayusman/kuchipudi-hdc/internal/detector"
)

// NumFeatures is the length of the feature vector produced by Extract.
const NumFeatures = 48

// degenerateHandSize is the hand_size threshold below which a pose is
// considered degenerate (spec.md §4.2) and Extract returns all zeros.
const degenerateHandSize = 1e-6

// fingertips lists the landmark indices of the five fingertips,
// thumb to pinky.
var fingertips = [5]int{
	detector.ThumbTip, detector.IndexTip, detector.MiddleTip,
	detector.RingTip, detector.PinkyTip,
}

// curlJoints lists, per finger, the (mcp, pip, tip) triple used to
// compute the curl angle at indices 20-24.
var curlJoints = [5][3]int{
	{detector.ThumbMCP, detector.ThumbIP, detector.ThumbTip},
	{detector.IndexMCP, detector.IndexPIP, detector.IndexTip},
	{detector.MiddleMCP, detector.MiddlePIP, detector.MiddleTip},
	{detector.RingMCP, detector.RingPIP, detector.RingTip},
	{detector.PinkyMCP, detector.PinkyPIP, detector.PinkyTip},
}

// adjacentMCPs lists the adjacent-MCP pairs for features 44-47.
var adjacentMCPs = [4][2]int{
	{detector.ThumbCMC, detector.IndexMCP},
	{detector.IndexMCP, detector.MiddleMCP},
	{detector.MiddleMCP, detector.RingMCP},
	{detector.RingMCP, detector.PinkyMCP},
}

// fingertipPairs lists the i<j pairs of fingertip indices (into
// fingertips, not landmark indices) used for features 25-34.
var fingertipPairs = [10][2]int{
	{0, 1}, {0, 2}, {0, 3}, {0, 4},
	{1, 2}, {1, 3}, {1, 4},
	{2, 3}, {2, 4},
	{3, 4},
}

// extractFeatures converts 21 hand landmarks into the 48-long
// pose-invariant feature vector described in spec.md §4.2. The caller
// must have already validated len(landmarks) == detector.NumLandmarks.
func extractFeatures(landmarks []detector.Point3D) []float64 {
	f := make([]float64, NumFeatures)

	wrist := landmarks[detector.Wrist]
	middleMCP := landmarks[detector.MiddleMCP]
	handSize := dist3D(wrist, middleMCP)

	if handSize < degenerateHandSize {
		return f
	}

	palmCenter := meanPoint(
		landmarks[detector.IndexMCP],
		landmarks[detector.MiddleMCP],
		landmarks[detector.RingMCP],
		landmarks[detector.PinkyMCP],
	)

	var tips [5]detector.Point3D
	for i, idx := range fingertips {
		tips[i] = landmarks[idx]
	}

	// 0-4: tip to wrist distance
	for i, tip := range tips {
		f[i] = dist3D(tip, wrist) / handSize
	}

	// 5-9: tip to palm center distance
	for i, tip := range tips {
		f[5+i] = dist3D(tip, palmCenter) / handSize
	}

	// 10-14: upward-positive relative height
	for i, tip := range tips {
		f[10+i] = (wrist.Y - tip.Y) / handSize
	}

	// 15-19: lateral spread
	for i, tip := range tips {
		f[15+i] = (tip.X - palmCenter.X) / handSize
	}

	// 20-24: curl angle at PIP/IP joint, normalized by pi
	for i, joint := range curlJoints {
		mcp := landmarks[joint[0]]
		pip := landmarks[joint[1]]
		tip := landmarks[joint[2]]
		f[20+i] = curlAngle(mcp, pip, tip) / math.Pi
	}

	// 25-34: pairwise inter-fingertip distances
	for i, pair := range fingertipPairs {
		f[25+i] = dist3D(tips[pair[0]], tips[pair[1]]) / handSize
	}

	// 35-38: thumb tip to each non-thumb fingertip
	for i := 1; i < 5; i++ {
		f[35+i-1] = dist3D(tips[0], tips[i]) / handSize
	}

	// 39-43: relative depth
	for i, tip := range tips {
		f[39+i] = (tip.Z - wrist.Z) / handSize
	}

	// 44-47: adjacent-MCP distances
	for i, pair := range adjacentMCPs {
		f[44+i] = dist3D(landmarks[pair[0]], landmarks[pair[1]]) / handSize
	}

	return f
}

// dist3D is the Euclidean distance between two 3D points.
func dist3D(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// meanPoint returns the component-wise mean of the given points.
func meanPoint(pts ...detector.Point3D) detector.Point3D {
	var sum detector.Point3D
	for _, p := range pts {
		sum.X += p.X
		sum.Y += p.Y
		sum.Z += p.Z
	}
	n := float64(len(pts))
	return detector.Point3D{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}
}

// curlAngle computes the angle at pip between (mcp-pip) and (tip-pip),
// in radians. Returns 0 if either vector has near-zero magnitude
// (spec.md §4.2).
func curlAngle(mcp, pip, tip detector.Point3D) float64 {
	v1 := detector.Point3D{X: mcp.X - pip.X, Y: mcp.Y - pip.Y, Z: mcp.Z - pip.Z}
	v2 := detector.Point3D{X: tip.X - pip.X, Y: tip.Y - pip.Y, Z: tip.Z - pip.Z}

	n1 := math.Sqrt(v1.X*v1.X + v1.Y*v1.Y + v1.Z*v1.Z)
	n2 := math.Sqrt(v2.X*v2.X + v2.Y*v2.Y + v2.Z*v2.Z)
	if n1 < 1e-8 || n2 < 1e-8 {
		return 0
	}

	dot := v1.X*v2.X + v1.Y*v2.Y + v1.Z*v2.Z
	cos := dot / (n1 * n2)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}
