package pose

import (
	"fmt"
	"strconv"
	"strings"
)

// Joint is one of the anatomical landmarks tracked per player.
type Joint int

// Joints in encoding order.
const (
	LeftToe Joint = iota
	RightToe
	LeftHeel
	RightHeel
	LeftAnkle
	RightAnkle
	LeftKnee
	RightKnee
	LeftHip
	RightHip
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHand
	RightHand
	LeftFingers
	RightFingers
	Core
	Neck
	Head
)

const (
	// JointCount is the number of joints per player.
	JointCount = 23

	// PlayerCount is the number of players in a position.
	PlayerCount = 2

	// PlayerJointCount is the number of tracked points in a position.
	PlayerJointCount = PlayerCount * JointCount
)

var jointNames = [JointCount]string{
	"LeftToe", "RightToe", "LeftHeel", "RightHeel", "LeftAnkle", "RightAnkle",
	"LeftKnee", "RightKnee", "LeftHip", "RightHip", "LeftShoulder", "RightShoulder",
	"LeftElbow", "RightElbow", "LeftWrist", "RightWrist", "LeftHand", "RightHand",
	"LeftFingers", "RightFingers", "Core", "Neck", "Head",
}

// mirrorTable maps each joint to its left/right counterpart.
// Core, Neck and Head map to themselves.
var mirrorTable = [JointCount]Joint{
	LeftToe: RightToe, RightToe: LeftToe,
	LeftHeel: RightHeel, RightHeel: LeftHeel,
	LeftAnkle: RightAnkle, RightAnkle: LeftAnkle,
	LeftKnee: RightKnee, RightKnee: LeftKnee,
	LeftHip: RightHip, RightHip: LeftHip,
	LeftShoulder: RightShoulder, RightShoulder: LeftShoulder,
	LeftElbow: RightElbow, RightElbow: LeftElbow,
	LeftWrist: RightWrist, RightWrist: LeftWrist,
	LeftHand: RightHand, RightHand: LeftHand,
	LeftFingers: RightFingers, RightFingers: LeftFingers,
	Core: Core, Neck: Neck, Head: Head,
}

// Valid reports whether j is one of the defined joints.
func (j Joint) Valid() bool { return j >= 0 && j < JointCount }

// String returns the joint name, e.g. "LeftKnee".
func (j Joint) String() string {
	if !j.Valid() {
		return "Joint(" + strconv.Itoa(int(j)) + ")"
	}
	return jointNames[j]
}

// Mirror returns the left/right counterpart of j.
func (j Joint) Mirror() Joint {
	if !j.Valid() {
		return j
	}
	return mirrorTable[j]
}

// ParseJoint looks up a joint by name, ignoring case.
func ParseJoint(s string) (Joint, error) {
	for i, name := range jointNames {
		if strings.EqualFold(name, s) {
			return Joint(i), nil
		}
	}
	return 0, fmt.Errorf("unknown joint %q", s)
}

// Joints returns all joints in encoding order.
func Joints() []Joint {
	js := make([]Joint, JointCount)
	for i := range js {
		js[i] = Joint(i)
	}
	return js
}

// PlayerJoint identifies one tracked point: a joint of player 0 or 1.
type PlayerJoint struct {
	Player int
	Joint  Joint
}

// Valid reports whether the key addresses one of the 46 tracked points.
func (k PlayerJoint) Valid() bool {
	return k.Player >= 0 && k.Player < PlayerCount && k.Joint.Valid()
}

// Index returns the position of k in encoding order (0..45).
func (k PlayerJoint) Index() int { return k.Player*JointCount + int(k.Joint) }

// String formats k as "p<player>.<Joint>", e.g. "p1.Head".
func (k PlayerJoint) String() string {
	return "p" + strconv.Itoa(k.Player) + "." + k.Joint.String()
}

// ParsePlayerJoint parses the "p<player>.<Joint>" form produced by String.
func ParsePlayerJoint(s string) (PlayerJoint, error) {
	player, name, ok := strings.Cut(s, ".")
	if !ok || len(player) != 2 || (player[0] != 'p' && player[0] != 'P') {
		return PlayerJoint{}, fmt.Errorf("invalid player joint %q (want p0.Head)", s)
	}
	n, err := strconv.Atoi(player[1:])
	if err != nil || n < 0 || n >= PlayerCount {
		return PlayerJoint{}, fmt.Errorf("invalid player in %q", s)
	}
	j, err := ParseJoint(name)
	if err != nil {
		return PlayerJoint{}, err
	}
	return PlayerJoint{Player: n, Joint: j}, nil
}

func playerJointAt(i int) PlayerJoint {
	return PlayerJoint{Player: i / JointCount, Joint: Joint(i % JointCount)}
}

// PlayerJoints returns all 46 keys in encoding order: every joint of
// player 0, then every joint of player 1.
func PlayerJoints() []PlayerJoint {
	keys := make([]PlayerJoint, PlayerJointCount)
	for i := range keys {
		keys[i] = playerJointAt(i)
	}
	return keys
}
