package zoomrooms

import "strings"

// Shell commands. The gateway appends the line terminator.
const (
	cmdCallStatus     = "zstatus call status"
	cmdCallInfo       = "zcommand call info"
	cmdDialStart      = "zcommand dial start meetingNumber:"
	cmdDialJoin       = "zcommand dial join meetingNumber:"
	cmdDialPassword   = " password:"
	cmdCallDisconnect = "zcommand call disconnect" // host: ends the meeting for everyone
	cmdCallLeave      = "zcommand call leave"      // participant: leaves only this room
	cmdMicrophoneMute = "zconfiguration call microphone mute"
	cmdCameraMute     = "zconfiguration call camera mute"
	cmdAudioInput     = "zstatus audio input line"
	cmdAudioOutput    = "zstatus audio output line"
	cmdCameraLine     = "zstatus video camera line"
	cmdSystemUnit     = "zstatus systemunit"
	cmdCameraControl  = "zcommand call cameracontrol id:0 state:start action:"
)

// Response line prefixes.
const (
	prefixAudioInput  = "*s Audio Input Line"
	prefixAudioOutput = "*s Audio Output Line"
	prefixCameraLine  = "*s Video Camera Line"
	prefixSystemUnit  = "*s SystemUnit"
	prefixMeetingID   = "*r InfoResult Info meeting_id"

	keyMeetingID = "InfoResult Info meeting_id"
)

// Terminal tokens and literals.
const (
	TokenOK       = "OK"
	TokenBlockEnd = "** end"

	statusMarker = "call status:"
	muteMarker   = "mute:"

	valueOn  = "on"
	valueOff = "off"
)

// commandFamilies are the prefixes whose responses carry a per-command marker.
var commandFamilies = []string{"zcommand", "zstatus", "zconfiguration"}

// responseMarkers maps canonical command keys to the substring a complete
// response must contain.
var responseMarkers = map[string]string{
	cmdAudioInput:                       "*s Audio Input Line",
	cmdAudioOutput:                      "*s Audio Output Line",
	cmdCameraLine:                       "*s Video Camera Line",
	cmdSystemUnit:                       "*s SystemUnit",
	cmdCallStatus:                       "*s Call Status:",
	cmdCallInfo:                         "*r InfoResult",
	cmdMicrophoneMute:                   "*c zConfiguration Call Microphone Mute",
	cmdCameraMute:                       "*c zConfiguration Call Camera Mute",
	cmdCallDisconnect:                   "*r CallDisconnectResult",
	cmdCallLeave:                        "*r CallDisconnectResult",
	"zcommand dial start meetingnumber": "*r DialStartResult",
	"zcommand dial join meetingnumber":  "*r DialJoinResult",
	"zcommand call cameracontrol id":    "*r CameraControl",
}

// Error literals end a response that the device rejected.
var errorLiterals = []string{
	"*e Connection rejected",
	"ERROR",
}

// Success literals end a generic (non-family) response.
var successLiterals = []string{
	"** end\r\n\r\nOK",
	"** end\n\nOK",
}

// CommandKey returns the canonical verifier key for a command: the text
// before the first parameter separator, trimmed and lower-cased.
func CommandKey(command string) string {
	key, _, _ := strings.Cut(command, ":")
	return strings.ToLower(strings.TrimSpace(key))
}

// commandFamily returns the command's family prefix, or "" when it has none.
func commandFamily(command string) string {
	fields := strings.Fields(strings.ToLower(command))
	if len(fields) == 0 {
		return ""
	}
	for _, family := range commandFamilies {
		if fields[0] == family {
			return family
		}
	}
	return ""
}

func onOff(on bool) string {
	if on {
		return valueOn
	}
	return valueOff
}
