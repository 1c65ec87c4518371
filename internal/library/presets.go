package library

import "github.com/Batman1190/Spirify/internal/models"

const presetCount = 5

// Preset playlist IDs.
const (
	PresetWorship      = "preset_worship_adoration"
	PresetPraise       = "preset_praise_celebration"
	PresetGospel       = "preset_gospel_classics"
	PresetContemporary = "preset_contemporary_faith"
	PresetBukasPalad   = "preset_bukas_palad"
)

// presetPlaylists returns fresh copies of the five built-in playlists. Their
// metadata lives here, not in the database; only accumulated tracks persist.
func presetPlaylists() []*models.Playlist {
	return []*models.Playlist{
		{
			ID:          PresetWorship,
			Name:        "Worship & Adoration",
			Description: "Deep worship songs that lift the soul and draw you closer to God's presence",
			Preset:      true,
			SuggestedSongs: []string{
				"What a Beautiful Name - Hillsong Worship",
				"Here I Am to Worship - Tim Hughes",
				"Heart of Worship - Matt Redman",
				"Oceans Where Feet May Fail - Hillsong UNITED",
				"How Great Is Our God - Chris Tomlin",
				"Build My Life - Housefires",
				"Goodness of God - Bethel Music",
			},
		},
		{
			ID:          PresetPraise,
			Name:        "Praise & Celebration",
			Description: "Joyful songs that celebrate faith, hope, and victory in Christ",
			Preset:      true,
			SuggestedSongs: []string{
				"Our God - Chris Tomlin",
				"This Is Amazing Grace - Phil Wickham",
				"I Thank God - Maverick City Music",
				"Trading My Sorrows - Darrell Evans",
				"Joy of the Lord - Rend Collective",
				"Alive - Hillsong Young & Free",
				"God's Not Dead - Newsboys",
			},
		},
		{
			ID:          PresetGospel,
			Name:        "Gospel Classics",
			Description: "Timeless gospel tracks that uplift and inspire the spirit",
			Preset:      true,
			SuggestedSongs: []string{
				"Take Me to the King - Tamela Mann",
				"I Smile - Kirk Franklin",
				"You Know My Name - Tasha Cobbs Leonard",
				"Break Every Chain - Jesus Culture",
				"Total Praise - Richard Smallwood",
				"Something About the Name Jesus - The Rance Allen Group",
				"Every Praise - Hezekiah Walker",
			},
		},
		{
			ID:          PresetContemporary,
			Name:        "Contemporary Faith",
			Description: "Modern Christian hits for reflection, worship, and encouragement",
			Preset:      true,
			SuggestedSongs: []string{
				"Who You Say I Am - Hillsong Worship",
				"Gratitude - Brandon Lake",
				"God Only Knows - for KING & COUNTRY",
				"Scars in Heaven - Casting Crowns",
				"Rescue - Lauren Daigle",
				"In Jesus Name God of Possible - Katy Nichole",
				"Firm Foundation He Won't - Cody Carnes",
			},
		},
		{
			ID:          PresetBukasPalad,
			Name:        "Bukas Palad Favorites",
			Description: "Inspiring Filipino Christian songs from Bukas Palad Music Ministry",
			Preset:      true,
			SuggestedSongs: []string{
				"Humayo't Ihayag - Bukas Palad",
				"Sa 'Yo Lamang - Bukas Palad",
				"Tanging Yaman - Bukas Palad",
				"I Will Sing Forever - Bukas Palad",
				"Anima Christi - Bukas Palad",
				"Lead Me Lord - Bukas Palad",
				"Panalangin sa Pagiging Bukas Palad",
			},
		},
	}
}

func presetByID(id string) *models.Playlist {
	for _, p := range presetPlaylists() {
		if p.ID == id {
			return p
		}
	}
	return nil
}
