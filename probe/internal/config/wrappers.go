// Copyright (C) 2017 Librato, Inc. All rights reserved.

package config

// GlobalConfig is loaded at start-up. Backends read it when they are built.
var GlobalConfig = NewConfig()

// Accessors of GlobalConfig.
var (
	GetBackend       = GlobalConfig.GetBackend
	GetDisabled      = GlobalConfig.GetDisabled
	GetEnabledProbes = GlobalConfig.GetEnabledProbes
	GetCollectorUDP  = GlobalConfig.GetCollectorUDP
	GetEncoding      = GlobalConfig.GetEncoding
	GetCollector     = GlobalConfig.GetCollector
	GetServiceKey    = GlobalConfig.GetServiceKey
	GetTrustedPath   = GlobalConfig.GetTrustedPath
	GetSkipVerify    = GlobalConfig.GetSkipVerify
	GetHostAlias     = GlobalConfig.GetHostAlias
	GetQueue         = GlobalConfig.GetQueue

	// Load re-reads the config file and the environment and applies opts.
	Load = GlobalConfig.RefreshConfig
)
