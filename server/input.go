package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"motiontrainer/motion"
)

// MessageKind 入站消息类型
type MessageKind string

const (
	MsgKeys    MessageKind = "keys"
	MsgGamepad MessageKind = "gamepad"
	MsgControl MessageKind = "control"

	// 仅由服务端内部投递
	msgConfig MessageKind = "config"
)

// 控制命令，与训练器控制面一一对应
const (
	CmdStart  = "start"
	CmdPause  = "pause"
	CmdResume = "resume"
	CmdReset  = "reset"
	CmdStop   = "stop"
	CmdSelect = "select"
)

var errBadMessage = errors.New("bad client message")

// ClientMessage 客户端输入（原始读数或控制命令），在 Tick 中统一处理
// 示例：
//
//	{"type":"keys","codes":["ArrowLeft","KeyJ"]}
//	{"type":"gamepad","connected":true,"buttons":[true,false],"axes":[0,0,0,0,0,0,0,0,0,0.714]}
//	{"type":"control","command":"select","sequence":"ewgf"}
type ClientMessage struct {
	Kind      MessageKind
	Codes     []string
	Pad       motion.GamepadSnapshot
	Connected bool
	Command   string
	Sequence  string

	trainer *motion.TrainerConfig
}

// ParseClientMessage 用 gjson 直接取字段，避免为每帧输入定义完整结构体
func ParseClientMessage(payload []byte) (ClientMessage, error) {
	if !gjson.ValidBytes(payload) {
		return ClientMessage{}, fmt.Errorf("%w: invalid json", errBadMessage)
	}
	root := gjson.ParseBytes(payload)
	msg := ClientMessage{Kind: MessageKind(strings.ToLower(root.Get("type").String()))}

	switch msg.Kind {
	case MsgKeys:
		codes := root.Get("codes")
		if !codes.IsArray() {
			return ClientMessage{}, fmt.Errorf("%w: keys.codes must be an array", errBadMessage)
		}
		msg.Codes = make([]string, 0, len(codes.Array()))
		codes.ForEach(func(_, v gjson.Result) bool {
			if v.Type == gjson.String {
				msg.Codes = append(msg.Codes, v.Str)
			}
			return true
		})
	case MsgGamepad:
		msg.Connected = root.Get("connected").Bool()
		root.Get("buttons").ForEach(func(_, v gjson.Result) bool {
			// 兼容 {"pressed":true} 与纯布尔两种写法
			if v.IsObject() {
				msg.Pad.Buttons = append(msg.Pad.Buttons, v.Get("pressed").Bool())
			} else {
				msg.Pad.Buttons = append(msg.Pad.Buttons, v.Bool())
			}
			return true
		})
		root.Get("axes").ForEach(func(_, v gjson.Result) bool {
			msg.Pad.Axes = append(msg.Pad.Axes, v.Float())
			return true
		})
	case MsgControl:
		msg.Command = strings.ToLower(root.Get("command").String())
		msg.Sequence = root.Get("sequence").String()
		switch msg.Command {
		case CmdStart, CmdPause, CmdResume, CmdReset, CmdStop:
		case CmdSelect:
			if msg.Sequence == "" {
				return ClientMessage{}, fmt.Errorf("%w: select without sequence", errBadMessage)
			}
		default:
			return ClientMessage{}, fmt.Errorf("%w: unknown command %q", errBadMessage, msg.Command)
		}
	default:
		return ClientMessage{}, fmt.Errorf("%w: unknown type %q", errBadMessage, msg.Kind)
	}
	return msg, nil
}

// RemoteInput 保存客户端最近上报的原始读数，供 Sampler 每帧读取
// 只在会话 Tick 线程中读写
type RemoteInput struct {
	codes     []string
	pad       motion.GamepadSnapshot
	connected bool
}

// HeldCodes 实现 motion.KeyboardSource
func (in *RemoteInput) HeldCodes() []string { return in.codes }

// Gamepad 实现 motion.GamepadSource；只支持 0 号槽位
func (in *RemoteInput) Gamepad(slot int) (motion.GamepadSnapshot, bool) {
	if slot != 0 || !in.connected {
		return motion.GamepadSnapshot{}, false
	}
	return in.pad, true
}

// Apply 用入站消息更新读数；非输入类消息返回 false
func (in *RemoteInput) Apply(msg ClientMessage) bool {
	switch msg.Kind {
	case MsgKeys:
		in.codes = msg.Codes
	case MsgGamepad:
		in.connected = msg.Connected
		in.pad = msg.Pad
	default:
		return false
	}
	return true
}
