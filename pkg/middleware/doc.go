// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// ベアラートークンの検証（認証ゲート）、本人一致および管理者ロールの
// 確認（認可ゲート）、CORS設定、パニックリカバリを含む。認可ゲートは
// 必ず認証ゲートの後段に合成し、検証済みアイデンティティなしで
// 評価されることはない。
package middleware
