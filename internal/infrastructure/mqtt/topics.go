package mqtt

import "fmt"

// Topic prefixes.
const (
	// TopicPrefix is the root of every harbour topic.
	TopicPrefix = "harbour"

	// TopicPrefixVoyage holds per-boat propulsion events.
	TopicPrefixVoyage = TopicPrefix + "/voyage"

	// TopicPrefixSystem holds process status.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics builds harbour topic names.
//
//	topic := mqtt.Topics{}.VoyageSail("pequod") // harbour/voyage/pequod/sail
type Topics struct{}

// VoyageSail returns the topic a boat's sail events are published on.
//
// Example: harbour/voyage/pequod/sail
func (Topics) VoyageSail(boat string) string {
	return fmt.Sprintf("%s/%s/sail", TopicPrefixVoyage, boat)
}

// SystemStatus returns the retained status topic.
//
// Example: harbour/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllVoyageSails matches the sail events of every boat.
//
// Pattern: harbour/voyage/+/sail
func (Topics) AllVoyageSails() string {
	return TopicPrefixVoyage + "/+/sail"
}

// AllTopics matches every harbour topic.
//
// Pattern: harbour/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
