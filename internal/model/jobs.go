package model

import "strings"

// Role groups jobs.
type Role struct {
	ID   string
	Name string
}

// Job is a playable class a rotation can be assigned to.
type Job struct {
	ID   string
	Name string
	Role string
}

// Roles lists roles in display order.
var Roles = []Role{
	{ID: "tank", Name: "Tank"},
	{ID: "heal", Name: "Heal"},
	{ID: "melee", Name: "Melee DPS"},
	{ID: "rangedMagic", Name: "Magical Ranged DPS"},
	{ID: "rangedPhysical", Name: "Physical Ranged DPS"},
}

// Jobs is the job catalog.
var Jobs = []Job{
	{ID: "ast", Name: "Astrologian", Role: "heal"},
	{ID: "blm", Name: "Black Mage", Role: "rangedMagic"},
	{ID: "brd", Name: "Bard", Role: "rangedPhysical"},
	{ID: "dnc", Name: "Dancer", Role: "rangedPhysical"},
	{ID: "drg", Name: "Dragoon", Role: "melee"},
	{ID: "drk", Name: "Dark Knight", Role: "tank"},
	{ID: "gnb", Name: "Gunbreaker", Role: "tank"},
	{ID: "mch", Name: "Machinist", Role: "rangedPhysical"},
	{ID: "mnk", Name: "Monk", Role: "melee"},
	{ID: "nin", Name: "Ninja", Role: "melee"},
	{ID: "pct", Name: "Pictomancer", Role: "rangedMagic"},
	{ID: "pld", Name: "Paladin", Role: "tank"},
	{ID: "rdm", Name: "Red Mage", Role: "rangedMagic"},
	{ID: "rpr", Name: "Reaper", Role: "melee"},
	{ID: "sam", Name: "Samurai", Role: "melee"},
	{ID: "sch", Name: "Scholar", Role: "heal"},
	{ID: "sge", Name: "Sage", Role: "heal"},
	{ID: "smn", Name: "Summoner", Role: "rangedMagic"},
	{ID: "vpr", Name: "Viper", Role: "melee"},
	{ID: "war", Name: "Warrior", Role: "tank"},
	{ID: "whm", Name: "White Mage", Role: "heal"},
}

// JobByID looks a job up by its id, case-insensitively.
func JobByID(id string) (Job, bool) {
	for _, j := range Jobs {
		if strings.EqualFold(j.ID, id) {
			return j, true
		}
	}
	return Job{}, false
}

// JobsByRole returns the jobs of a role.
func JobsByRole(role string) []Job {
	var out []Job
	for _, j := range Jobs {
		if j.Role == role {
			out = append(out, j)
		}
	}
	return out
}
