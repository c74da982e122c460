// Package hostel はホステル食事管理APIのHTTPサーバー実装を提供する。
//
// トークン発行、ユーザー管理、食事カタログのCRUD、食事リクエスト、
// 決済インテント作成と決済履歴を単一サービスとして公開する。保護された
// エンドポイントは 認証 → 認可 → ストレージ操作 の順にゲートを合成し、
// 認可が検証済みアイデンティティなしで評価されることはない。
package hostel
