package services

import "github.com/desertthunder/moodmusic/internal/models"

// Genre is a labelled search query used to pick one featured playlist.
type Genre struct {
	Name  string
	Query string
}

// Genres drive the featured playlist section, one Spotify playlist each.
var Genres = []Genre{
	{"Pop", "pop hits"},
	{"Rock", "rock classics"},
	{"Hip Hop", "hip hop"},
	{"Electronic", "electronic dance"},
	{"Jazz", "jazz"},
	{"Classical", "classical music"},
	{"Country", "country music"},
	{"R&B", "r&b soul"},
	{"Reggae", "reggae"},
	{"Latin", "latin music"},
	{"Bollywood", "bollywood hits"},
	{"Indie", "indie music"},
}

// jioSaavnGenres are the playlist queries tried against JioSaavn when Spotify yields nothing.
var jioSaavnGenres = []Genre{
	{"Bollywood", "bollywood"},
	{"Hindi", "hindi"},
	{"English", "english"},
	{"Punjabi", "punjabi"},
}

// PopularArtists seeds the artists section.
var PopularArtists = []string{
	"Arijit Singh", "Sonu Nigam", "Shreya Ghoshal", "Atif Aslam",
	"Ed Sheeran", "Taylor Swift", "The Weeknd", "Drake", "Adele",
	"Billie Eilish", "Post Malone", "Dua Lipa", "Justin Bieber",
	"Ariana Grande", "Bruno Mars", "Coldplay", "Imagine Dragons",
	"Eminem", "Kanye West", "Kendrick Lamar", "Lana Del Rey",
	"Rihanna", "Beyoncé", "The Beatles", "Queen",
}

var (
	trendingVariants = []string{"chart hits", "viral songs", "top hits"}
	defaultIndustry  = "bollywood"
)

// industryVariants phrases the regional section of the feed for industry (e.g. "bollywood").
func industryVariants(industry string) []string {
	return []string{industry + " hits", "latest " + industry + " songs", "top " + industry}
}

func builtin(id, title, subtitle, image string, kind models.ItemKind) models.CatalogItem {
	item := models.CatalogItem{
		ID:       id,
		Title:    title,
		Subtitle: subtitle,
		ImageURL: &image,
		Source:   models.SourceBuiltin,
		Kind:     kind,
	}
	switch kind {
	case models.KindTrack:
		item.SetArtists([]string{subtitle})
	case models.KindArtist:
		item.SetArtists([]string{title})
	}
	return item
}

func defaultTrending() []models.CatalogItem {
	return []models.CatalogItem{
		builtin("1", "Blue Eyes", "Honey Singh", "/images/song-1.png", models.KindTrack),
		builtin("2", "Photograph", "Ed Sheeran", "/images/song-2.png", models.KindTrack),
		builtin("3", "Dil Jhoom", "Arijit Singh", "/images/song-3.png", models.KindTrack),
		builtin("4", "APT", "Rose & Bruno Mars", "/images/song-4.png", models.KindTrack),
	}
}

func defaultPlaylists() []models.CatalogItem {
	return []models.CatalogItem{
		builtin("1", "Pop Hits", "Top pop songs", "/images/playlist-1.png", models.KindPlaylist),
		builtin("2", "Rock Classics", "Best rock songs", "/images/playlist-2.png", models.KindPlaylist),
		builtin("3", "Hip Hop Essentials", "Hip hop favorites", "/images/playlist-3.png", models.KindPlaylist),
		builtin("4", "Electronic Dance", "EDM hits", "/images/playlist-4.png", models.KindPlaylist),
		builtin("5", "Jazz Collection", "Smooth jazz", "/images/playlist-1.png", models.KindPlaylist),
		builtin("6", "Classical Masterpieces", "Classical music", "/images/playlist-2.png", models.KindPlaylist),
		builtin("7", "Bollywood Hits", "Top Hindi songs", "/images/playlist-3.png", models.KindPlaylist),
		builtin("8", "R&B Soul", "Soulful R&B", "/images/playlist-4.png", models.KindPlaylist),
	}
}

func defaultArtists() []models.CatalogItem {
	return []models.CatalogItem{
		builtin("1", "Arijit Singh", "Bollywood Singer", "/images/artist-arijit-circle.png", models.KindArtist),
		builtin("2", "Sonu Nigam", "Bollywood Singer", "/images/artist-sonu-circle.png", models.KindArtist),
		builtin("3", "Shreya Ghoshal", "Bollywood Singer", "/images/artist-shreya-circle.png", models.KindArtist),
		builtin("4", "Atif Aslam", "Bollywood Singer", "/images/artist-atif-circle.png", models.KindArtist),
	}
}
