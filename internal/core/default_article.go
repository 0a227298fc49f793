package core

// DefaultArticle is the built-in demo source text returned for the default URL without scraping.
const DefaultArticle SourceText = `Priemerné ceny pohonných látok v SR – 41. týždeň 2024
Vydavateľ: Štatistický úrad SR
Dátum publikovania: 18.10.2024
Prvá polovica októbra priniesla zdražovanie pohonných látok
Ceny vybraných pohonných látok sa po troch týždňoch útlmu pohli smerom nahor. Motorová nafta a benzíny medzitýždňovo zdraželi v priemere o 2 centy za liter. Napriek tomu motoristi nakupovali najpoužívanejšie pohonné látky za nižšie ceny ako vlani.
Vybrané druhy pohonných látok v priebehu 41. týždňa zdraželi, nárast cien bol najvýraznejší za posledné týždne. Ceny nafty a benzínov tak zaznamenali najvyššie hodnoty od začiatku septembra.
Spotrebitelia nakupovali počas 41. týždňa benzín 98 v priemere za 1,710 eura za liter, benzín 95 bol na úrovni 1,495 eura a motorová nafta sa predávala za 1,420 eura za liter. Všetky tri druhy pohonných látok medzitýždňovo zdraželi v priemere o 2 centy.
Plyny medzitýždňovo zaznamenali rôzne cenové výkyvy. Kým plyn LPG sa predával drahšie o 2,5 centa za 0,739 eura za liter, cena plynu LNG klesla o 1,5 centa na 1,659 eura za kilogram a plyn CNG nepatrne zlacnel na 1,552 eura za kilogram.
Štatistický úrad SR informuje o priemerných cenách 9 druhov palív pre motorové vozidlá, ku ktorým patria aj alternatívne druhy pohonných látok. Počas 41. týždňa bola cena plynu bioLNG na úrovni 2,394 eura za kilogram, medzitýždňovo zdražel o 8,3 centa. Vodík sa predával za 21,6 eura za kilogram a elektrická energia, slúžiaca na nabíjanie elektromobilov, bola na úrovni 0,41 eura za 1 kWh.
Priemerná cena motorovej nafty bola v 41. týždni medziročne nižšia o 14,5 %, 98 oktánový benzín bol lacnejší o 7,9 % a cena 95 oktánového benzínu bola oproti rovnakému obdobiu minulého roka nižšia o 7,1 %. Cena plynu LNG bola vyššia o 9,1 %, LPG bol drahší o 5,6 % a plyn CNG bol v porovnaní s vlaňajškom lacnejší o 8,6 %.
Od januára 2024 bol zoznam sledovaných pohonných hmôt rozšírený o tri nové palivá: bioLNG, vodík a elektrickú energiu slúžiacu na dobíjanie elektromobilov.`

// DefaultTopic is the demo topic paired with DefaultArticle.
const DefaultTopic = "Zdražovanie pohonných látok v októbri 2024"
