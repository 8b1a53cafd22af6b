package discord

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// hashCommand creates a deterministic hash for an application command
// definition, ignoring runtime-only fields.
func hashCommand(cmd *discordgo.ApplicationCommand) string {
	obj := map[string]interface{}{
		"name":        cmd.Name,
		"description": cmd.Description,
		"type":        cmd.Type,
	}
	if len(cmd.Options) > 0 {
		obj["options"] = normalizeOptions(cmd.Options)
	}
	data, _ := json.Marshal(obj)
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]interface{} {
	normalized := make([]map[string]interface{}, len(opts))
	for i, o := range opts {
		entry := map[string]interface{}{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if o.MinValue != nil {
			entry["min_value"] = *o.MinValue
		}
		if o.MaxValue != 0 {
			entry["max_value"] = o.MaxValue
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]interface{}, len(o.Choices))
			for j, c := range o.Choices {
				choices[j] = map[string]interface{}{
					"name":  c.Name,
					"value": c.Value,
				}
			}
			entry["choices"] = choices
		}
		normalized[i] = entry
	}

	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i]["name"].(string) < normalized[j]["name"].(string)
	})
	return normalized
}

func guildCachePath(guildID string) string {
	return filepath.Join("data", "commands", guildID+".json")
}

// loadGuildCommandHashes reads the per-guild hash cache; a missing file
// yields an empty map and a full re-registration.
func loadGuildCommandHashes(guildID string) map[string]string {
	data := make(map[string]string)
	file, err := os.ReadFile(guildCachePath(guildID))
	if err == nil {
		_ = json.Unmarshal(file, &data)
	}
	return data
}

func saveGuildCommandHashes(guildID string, hashes map[string]string) {
	path := guildCachePath(guildID)
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	data, _ := json.MarshalIndent(hashes, "", "  ")
	_ = os.WriteFile(path, data, 0644)
}
