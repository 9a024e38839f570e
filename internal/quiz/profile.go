package quiz

import (
	"fmt"
	"strings"
)

// Profile is the human-authored description shown on a result card.
type Profile struct {
	Key       TypeKey  `json:"key"`
	Name      string   `json:"name"`
	Emoji     string   `json:"emoji"`
	Summary   string   `json:"summary"`
	Strengths []string `json:"strengths"`
	Caution   string   `json:"caution"`
	BestMatch TypeKey  `json:"best_match"`
	Tags      []string `json:"tags"`
}

var profiles = [typeKeyCount]Profile{
	TypeELA: {
		Name: "Spark Maker", Emoji: "⚡️", Summary: "The ignition that sets off flashes of energy among people",
		Strengths: []string{"Speed of execution", "Networking", "Early momentum"},
		Caution:   "Watch for overheating; build rhythm with routines",
		BestMatch: TypeIFC, Tags: []string{"#CompassType", "#SparkMaker"},
	},
	TypeELC: {
		Name: "Party Curator", Emoji: "🎉", Summary: "Tunes the mood and lifts the team's energy",
		Strengths: []string{"Sense of atmosphere", "Connecting people", "Joy of starting"},
		Caution:   "Mind the delivery deadlines",
		BestMatch: TypeILA, Tags: []string{"#PartyCurator"},
	},
	TypeEFA: {
		Name: "Frontier Pilot", Emoji: "🛩️", Summary: "A pioneering pilot who pulls speed out of the rules",
		Strengths: []string{"Organized execution", "Risk management", "Leadership"},
		Caution:   "Don't lose flexibility",
		BestMatch: TypeILC, Tags: []string{"#FrontierPilot"},
	},
	TypeEFC: {
		Name: "Team Harmonizer", Emoji: "🧩", Summary: "Weaves people together and raises the team's chemistry",
		Strengths: []string{"Coordination", "Support", "Keeping relationships"},
		Caution:   "Beware of diluting your own view",
		BestMatch: TypeILA, Tags: []string{"#TeamHarmonizer"},
	},
	TypeILA: {
		Name: "Solo Architect", Emoji: "🧠", Summary: "Born to design deeply and finish quietly",
		Strengths: []string{"Focus", "Logic", "Design"},
		Caution:   "Time your sharing and collaboration",
		BestMatch: TypeEFC, Tags: []string{"#SoloArchitect"},
	},
	TypeILC: {
		Name: "Reflective Producer", Emoji: "🌙", Summary: "A creator who turns deep empathy and taste into results",
		Strengths: []string{"Empathy", "Sensitivity", "Expression"},
		Caution:   "Keep a finish-and-ship rhythm",
		BestMatch: TypeEFA, Tags: []string{"#ReflectiveProducer"},
	},
	TypeIFA: {
		Name: "Deep-Diver Hacker", Emoji: "🧪", Summary: "An experimenter who digs in alone and reinvents the system",
		Strengths: []string{"Tenacity", "Problem solving", "Automation"},
		Caution:   "Beware of silos and perfectionism",
		BestMatch: TypeELC, Tags: []string{"#DeepDiverHacker"},
	},
	TypeIFC: {
		Name: "Gardener Planner", Emoji: "🌿", Summary: "A growth keeper who tends relationships and systems to grow 1 to N",
		Strengths: []string{"Routine", "Care", "Sustained growth"},
		Caution:   "Strengthen early speed and decisiveness",
		BestMatch: TypeELA, Tags: []string{"#GardenerPlanner"},
	},
}

// ProfileOf returns the descriptor for k. Unknown keys report false.
func ProfileOf(k TypeKey) (Profile, bool) {
	if !k.Valid() {
		return Profile{}, false
	}
	p := profiles[k]
	p.Key = k
	p.Strengths = append([]string(nil), p.Strengths...)
	p.Tags = append([]string(nil), p.Tags...)
	return p, true
}

// ShareCaption is the text clients attach when sharing a result.
func (p Profile) ShareCaption(origin string) string {
	caption := fmt.Sprintf("I'm %s %s. What did you get? #MindCompass", p.Key, p.Name)
	if origin = strings.TrimSpace(origin); origin != "" {
		caption += " " + origin
	}
	return caption
}

// CardFileName is the suggested file name for an exported result card.
func (p Profile) CardFileName() string {
	return fmt.Sprintf("SelfCompass_%s.png", p.Key)
}
