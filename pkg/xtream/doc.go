// Package xtream implements a client for Xtream Codes compatible panels.
//
// The client covers the player_api.php surface needed to authenticate an
// account and browse its catalog (live, VOD, and series categories and
// listings, per-item details, and short EPG), plus URL construction for the
// panel's direct stream endpoints.
//
// Panels in the wild are loose with types: numeric fields arrive as numbers
// or strings depending on the panel software and version. The Flex types in
// this package absorb that variance so callers always see Go-native values.
//
// Basic usage:
//
//	client := xtream.NewClient("http://panel.example.com:8080", "user", "pass")
//
//	account, err := client.Authenticate(ctx)
//	if err != nil {
//		// network or panel error
//	}
//	if !account.UserInfo.IsAuthenticated() {
//		// bad credentials or disabled account
//	}
//
//	categories, err := client.LiveCategories(ctx)
//	streams, err := client.LiveStreams(ctx, &xtream.ListOptions{CategoryID: "42"})
//
// Stream URL construction never touches the network:
//
//	url := client.LiveURL("1234", "m3u8")
//	bare := client.LiveURL("1234", "") // no container extension
package xtream
