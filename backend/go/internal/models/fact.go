package models

// EntityFact 是从问答对中推导出的实体位置事实。
// Entity 为小写后的实体名，作为唯一键；Location 为一句自由文本描述。
// 同一实体的事实后写覆盖先写。
type EntityFact struct {
	Entity   string `json:"entity" bson:"entity"`
	Location string `json:"location" bson:"location"`
}
