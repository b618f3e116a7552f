// Package chat contains the chat sources feeding the session loop.
//
// It provides three entrypoints:
//   - Follower: tails a game chat log file (one "<ts> [TYPE] name: text" line
//     per message) and enqueues every line as it is appended.
//   - TwitchBridge: connects to Twitch IRC for TWITCH_CHANNEL. Viewer messages
//     become public chat lines answered in the channel; messages from
//     TWITCH_OWNER are sent as the local player.
//   - ParseLine / ParseFile: the chat log format, also used for batch replay.
//
// Besides chat types (GAMEMESSAGE, PUBLICCHAT, PRIVATECHATOUT, ...) the log
// format carries session state lines: INPUT, ACCOUNT, KILLLOG, PLAYERKILLS,
// WILDERNESS and VARS.
//
// Credentials: the IRC client requires a bot username and an OAuth token with
// chat:read/chat:edit scopes.
package chat
