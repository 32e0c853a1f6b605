// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package buffer

import "math"

// Timestamp is a signed count of nanoseconds since an implementation
// defined epoch (conventionally Unix epoch). A value of 0 in a query
// means "latest available".
type Timestamp int64

// LatestSentinel is the Timestamp value meaning "latest available".
const LatestSentinel Timestamp = 0

// Kind distinguishes a static (time-invariant) edge from a dynamic one.
type Kind int

const (
	// Static transforms never change; the latest pose is returned
	// regardless of the queried time.
	Static Kind = iota
	// Dynamic transforms vary over time and are interpolated between
	// bracketing samples.
	Dynamic
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Vec3 is a 3-vector translation.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func lerp(a, b Vec3, w float64) Vec3 {
	return a.scale(1 - w).add(b.scale(w))
}

// Quat is a unit quaternion (x, y, z, w) representing rotation.
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat is the no-rotation quaternion.
var IdentityQuat = Quat{0, 0, 0, 1}

// NewQuat constructs a Quat from raw components, normalizing it to
// unit length. The zero quaternion normalizes to the identity.
func NewQuat(x, y, z, w float64) Quat {
	n := math.Sqrt(x*x + y*y + z*z + w*w)
	if n == 0 {
		return IdentityQuat
	}
	return Quat{x / n, y / n, z / n, w / n}
}

func (q Quat) dot(o Quat) float64 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

func (q Quat) negate() Quat { return Quat{-q.X, -q.Y, -q.Z, -q.W} }

// mul composes two rotations: q * o.
func (q Quat) mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// conjugate is the inverse rotation for a unit quaternion.
func (q Quat) conjugate() Quat { return Quat{-q.X, -q.Y, -q.Z, q.W} }

// rotate applies q's rotation to the vector v.
func (q Quat) rotate(v Vec3) Vec3 {
	// v' = q * (v,0) * q^-1, expanded without constructing intermediate quats.
	ux, uy, uz := q.X, q.Y, q.Z
	uw := q.W
	// t = 2 * cross(u, v)
	tx := 2 * (uy*v.Z - uz*v.Y)
	ty := 2 * (uz*v.X - ux*v.Z)
	tz := 2 * (ux*v.Y - uy*v.X)
	return Vec3{
		X: v.X + uw*tx + (uy*tz - uz*ty),
		Y: v.Y + uw*ty + (uz*tx - ux*tz),
		Z: v.Z + uw*tz + (ux*ty - uy*tx),
	}
}

// slerp performs shortest-arc spherical linear interpolation between
// two unit quaternions.
func slerp(a, b Quat, w float64) Quat {
	cosHalfTheta := a.dot(b)
	if cosHalfTheta < 0 {
		b = b.negate()
		cosHalfTheta = -cosHalfTheta
	}
	if cosHalfTheta > 0.9995 {
		return NewQuat(
			a.X+(b.X-a.X)*w,
			a.Y+(b.Y-a.Y)*w,
			a.Z+(b.Z-a.Z)*w,
			a.W+(b.W-a.W)*w,
		)
	}
	halfTheta := math.Acos(cosHalfTheta)
	sinHalfTheta := math.Sqrt(1 - cosHalfTheta*cosHalfTheta)
	ra := math.Sin((1-w)*halfTheta) / sinHalfTheta
	rb := math.Sin(w*halfTheta) / sinHalfTheta
	return NewQuat(
		a.X*ra+b.X*rb,
		a.Y*ra+b.Y*rb,
		a.Z*ra+b.Z*rb,
		a.W*ra+b.W*rb,
	)
}

// Pose is a rigid-body transform: a translation plus a unit-quaternion
// rotation.
type Pose struct {
	Translation Vec3
	Rotation    Quat
}

// IdentityPose is the zero-translation, no-rotation transform.
var IdentityPose = Pose{Translation: Vec3{}, Rotation: IdentityQuat}

// Compose applies standard rigid-body multiplication: (R,p) ∘ (R',p') =
// (R·R', R·p' + p). Rotations are re-normalized after multiplication to
// bound numerical drift.
func (p Pose) Compose(o Pose) Pose {
	r := p.Rotation.mul(o.Rotation)
	return Pose{
		Translation: p.Translation.add(p.Rotation.rotate(o.Translation)),
		Rotation:    NewQuat(r.X, r.Y, r.Z, r.W),
	}
}

// Inverse returns (Rᵀ, −Rᵀ·p).
func (p Pose) Inverse() Pose {
	inv := p.Rotation.conjugate()
	return Pose{
		Translation: inv.rotate(p.Translation).scale(-1),
		Rotation:    inv,
	}
}

// InterpolatePose lerps translation and slerps rotation between two
// poses at bracketing stamps t0 < t < t1, with w = (t-t0)/(t1-t0).
func InterpolatePose(p0 Pose, p1 Pose, w float64) Pose {
	return Pose{
		Translation: lerp(p0.Translation, p1.Translation, w),
		Rotation:    slerp(p0.Rotation, p1.Rotation, w),
	}
}

// StampedPose pairs a Pose with the Timestamp it was observed at.
// History orders and compares samples by Stamp alone; StampedPose
// itself defines no comparison, and == on it compares the Pose as well.
type StampedPose struct {
	Stamp Timestamp
	Pose  Pose
}
