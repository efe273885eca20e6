package usecase

import "github.com/iamvkosarev/persona-chat/pkg/local"

var (
	TextSettingsSaved = local.NewSet(
		"Settings saved!",
		local.NewTrans(local.Zh, "设置已保存!"),
	)
	TextSettingsIncomplete = local.NewSet(
		"Please fill in both the API URL and the API key.",
		local.NewTrans(local.Zh, "请同时填写反代地址和密匙。"),
	)
	TextCharacterSaved = local.NewSet(
		"Character saved!",
		local.NewTrans(local.Zh, "角色已保存!"),
	)
	TextSaveFailed = local.NewSet(
		"Failed to save: %s",
		local.NewTrans(local.Zh, "保存失败: %s"),
	)
	TextFetchMissingConnection = local.NewSet(
		"Please fill in the API URL and key first.",
		local.NewTrans(local.Zh, "请先填写反代地址和密匙"),
	)
	TextModelsFetched = local.NewSet(
		"Models fetched!",
		local.NewTrans(local.Zh, "模型列表拉取成功!"),
	)
	TextModelsFetchFailed = local.NewSet(
		"Failed to fetch models: %s",
		local.NewTrans(local.Zh, "拉取模型失败: %s"),
	)
	TextUnknownModel = local.NewSet(
		"Model %s is not in the fetched list.",
		local.NewTrans(local.Zh, "模型 %s 不在已拉取的列表中。"),
	)
	TextSendMissingConfig = local.NewSet(
		"Please configure the API URL and key in Settings and select a model first.",
		local.NewTrans(local.Zh, "请先在“设置”中完成 API 地址、密匙配置并选择一个模型。"),
	)
	TextSendMissingCharacter = local.NewSet(
		"Please set up a character first.",
		local.NewTrans(local.Zh, "请先点击右上角设定一个角色。"),
	)
	TextChatFailed = local.NewSet(
		"Error: %s",
		local.NewTrans(local.Zh, "发生错误: %s"),
	)
)
