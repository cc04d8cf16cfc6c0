package fnmock

// Names of the modules every Instance starts with.
const (
	ModuleKVStore     = "kvstore"
	ModulePubNub      = "pubnub"
	ModuleBase64      = "codec/base64"
	ModuleQueryString = "codec/query_string"
	ModuleAuth        = "codec/auth"
	ModuleVault       = "vault"
	ModuleXHR         = "xhr"
	ModuleUUID        = "uuid"
	ModuleUtils       = "utils"
)

// DefaultModules returns a fresh copy of the built-in module set.
func DefaultModules() Modules {
	return Modules{
		ModuleKVStore:     KVStoreModule(),
		ModulePubNub:      PubNubModule(),
		ModuleBase64:      Base64Module(),
		ModuleQueryString: QueryStringModule(),
		ModuleAuth:        AuthModule(),
		ModuleVault:       VaultModule(),
		ModuleXHR:         XHRModule(),
		ModuleUUID:        UUIDModule(),
		ModuleUtils:       UtilsModule(),
	}
}
