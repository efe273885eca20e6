package tui

import "github.com/iamvkosarev/persona-chat/pkg/local"

var (
	TextTitle = local.NewSet(
		"persona-chat",
		local.NewTrans(local.Zh, "角色聊天"),
	)
	TextNoCharacter = local.NewSet(
		"no character (ctrl+p)",
		local.NewTrans(local.Zh, "未设定角色 (ctrl+p)"),
	)
	TextNavChat = local.NewSet(
		"F1 Chat",
		local.NewTrans(local.Zh, "F1 聊天"),
	)
	TextNavSettings = local.NewSet(
		"F2 Settings",
		local.NewTrans(local.Zh, "F2 设置"),
	)
	TextInputPlaceholder = local.NewSet(
		"Type a message...",
		local.NewTrans(local.Zh, "输入消息..."),
	)
	TextSend = local.NewSet(
		"[ Send ]",
		local.NewTrans(local.Zh, "[ 发送 ]"),
	)
	TextAPIURL = local.NewSet(
		"API URL",
		local.NewTrans(local.Zh, "反代地址"),
	)
	TextAPIKey = local.NewSet(
		"API key",
		local.NewTrans(local.Zh, "密匙"),
	)
	TextModel = local.NewSet(
		"Model",
		local.NewTrans(local.Zh, "模型"),
	)
	TextNoModels = local.NewSet(
		"(fetch models first)",
		local.NewTrans(local.Zh, "(请先拉取模型)"),
	)
	TextFetchModels = local.NewSet(
		"[ Fetch models ]",
		local.NewTrans(local.Zh, "[ 拉取模型 ]"),
	)
	TextSave = local.NewSet(
		"[ Save ]",
		local.NewTrans(local.Zh, "[ 保存 ]"),
	)
	TextCharacterTitle = local.NewSet(
		"Character",
		local.NewTrans(local.Zh, "角色设定"),
	)
	TextCharacterName = local.NewSet(
		"Name",
		local.NewTrans(local.Zh, "名字"),
	)
	TextCharacterPrompt = local.NewSet(
		"Prompt",
		local.NewTrans(local.Zh, "设定"),
	)
	TextYou = local.NewSet(
		"You",
		local.NewTrans(local.Zh, "你"),
	)
	TextAssistant = local.NewSet(
		"Assistant",
		local.NewTrans(local.Zh, "助手"),
	)
	TextDismiss = local.NewSet(
		"enter to close",
		local.NewTrans(local.Zh, "按回车关闭"),
	)
	TextStatusFormat = local.NewSet(
		"model: %s  prompt tokens: %d",
		local.NewTrans(local.Zh, "模型: %s  提示词 token: %d"),
	)
	TextStatusHelp = local.NewSet(
		"tab focus · ctrl+p character · ctrl+c quit",
		local.NewTrans(local.Zh, "tab 切换 · ctrl+p 角色 · ctrl+c 退出"),
	)
)
